package main

import (
	"fmt"

	echoapi "github.com/kymani/udahili/apps/api/echo"
	"github.com/kymani/udahili/core"
)

// adminToken issues a signed admin JWT so a staff member can call the review endpoints.
func (cli *commandLine) adminToken(name string) error {
	name = core.CleanString(name)

	claims := echoapi.GetStaffClaims(cli.conf, name)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
