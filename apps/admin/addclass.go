package main

import (
	"context"
	"fmt"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/class"
)

// addClass registers a class.Class that applicants can then be verified against.
func (cli *commandLine) addClass(name, level string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	level = core.CleanString(level, true /* lower */)

	cls, err := cli.clsSvc.Create(ctx, class.NewClass{Name: name, Level: level})
	if err != nil {
		return err
	}
	fmt.Printf("class %q created (id=%s)\n", cls.Name, cls.ID)
	return nil
}
