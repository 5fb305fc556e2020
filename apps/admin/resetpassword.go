package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signquick/signquick/core/user"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword -u USERNAME",
		Short: "Reset a user's password. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			// same rules as registration
			nu := user.NewUser{Username: uname, Password: pwd}
			if err = nu.Validate(cli.validate); err != nil {
				return err
			}
			if err = cli.usrSvc.ResetPassword(cmd.Context(), nu.Username, pwd); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "password of %q updated\n", nu.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the user's username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
