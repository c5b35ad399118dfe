package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/class"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB
	conf   *core.Config
	clsSvc class.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  addclass -name NAME [-level LEVEL] - register an admission class")
	fmt.Println("  admintoken -name NAME - issue an admin JWT for a staff member")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addClassCmd := flag.NewFlagSet("addclass", flag.ExitOnError)
	addClassName := addClassCmd.String("name", "", "The class name, eg. \"Grade 5\".")
	addClassLevel := addClassCmd.String("level", "", "An optional level tag, eg. \"primary\".")

	adminTokenCmd := flag.NewFlagSet("admintoken", flag.ExitOnError)
	adminTokenName := adminTokenCmd.String("name", "", "The staff member's name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addclass":
		if err := addClassCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addClassName == "" {
			addClassCmd.Usage()
			return errHelp
		}
		return cli.addClass(*addClassName, *addClassLevel)
	case "admintoken":
		if err := adminTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *adminTokenName == "" {
			adminTokenCmd.Usage()
			return errHelp
		}
		return cli.adminToken(*adminTokenName)
	default:
		cli.printUsage()
		return errHelp
	}
}
