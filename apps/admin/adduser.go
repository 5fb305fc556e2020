package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/signquick/signquick/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "adduser -u USERNAME",
		Short: "Register a user with the default sign data. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.addUser(cmd, uname, pwd)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "user %q created (id %d)\n", usr.Username, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the new user's username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (cli *commandLine) addUser(cmd *cobra.Command, uname, pwd string) (user.User, error) {
	nu := user.NewUser{Username: uname, Password: pwd}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, err
	}
	usr, err := cli.usrSvc.Register(cmd.Context(), nu)
	return usr, errors.Wrap(err, "registering user")
}
