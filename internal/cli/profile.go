package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/docgen"
)

func (c *CLI) profileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage settings profiles",
	}
	cmd.AddCommand(c.profileListCommand())
	cmd.AddCommand(c.profileCreateCommand())
	cmd.AddCommand(c.profileSwitchCommand())
	cmd.AddCommand(c.profileDeleteCommand())
	cmd.AddCommand(c.profileSetCommand())
	cmd.AddCommand(c.profileMemberCommand())
	cmd.AddCommand(c.profileResetCommand())
	return cmd
}

func (c *CLI) withSettings(cmd *cobra.Command, fn func(s *docgen.SettingsStore) error) error {
	return c.withApp(cmd.Context(), true, func(ctx context.Context, a *app) error {
		return fn(a.settings)
	})
}

func (c *CLI) profileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles; the current one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				current, err := s.Current()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
				for _, p := range s.Profiles() {
					mark := " "
					if p.ID == current.ID {
						mark = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d ahli\n", mark, p.ID, p.Name, p.Type, len(p.Settings.Members))
				}
				return w.Flush()
			})
		},
	}
}

func (c *CLI) profileCreateCommand() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				p, err := s.CreateProfile(args[0], docgen.ProfileType(typ))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.Out, p.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(docgen.ProfileSociety), "profile type: school or society")
	return cmd
}

func (c *CLI) profileSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id>",
		Short: "Make a profile current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				return s.SwitchProfile(args[0])
			})
		},
	}
}

func (c *CLI) profileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile; the last one is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				return s.DeleteProfile(args[0])
			})
		},
	}
}

func (c *CLI) profileResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the current profile to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				return s.ResetCurrentProfile()
			})
		},
	}
}

func (c *CLI) profileSetCommand() *cobra.Command {
	var (
		name, code, address, font, user string
		logo1, logo2, setiausaha, ketua string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update branding, font and signatures of the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch docgen.SettingsPatch
			text := func(flag, value string, dst **string) {
				if flags.Changed(flag) {
					v := value
					*dst = &v
				}
			}
			text("school-name", name, &patch.SchoolName)
			text("school-code", code, &patch.SchoolCode)
			text("school-address", address, &patch.SchoolAddress)
			text("user-member", user, &patch.UserMemberID)
			if flags.Changed("font") {
				f := docgen.Font(font)
				patch.Font = &f
			}

			images := []struct {
				flag, path string
				kind       docgen.UploadKind
				dst        **string
			}{
				{"logo1", logo1, docgen.UploadLogo, &patch.Logo1},
				{"logo2", logo2, docgen.UploadLogo, &patch.Logo2},
				{"setiausaha-signature", setiausaha, docgen.UploadSignature, &patch.SetiausahaSignature},
				{"ketua-signature", ketua, docgen.UploadSignature, &patch.KetuaPanitiaSignature},
			}
			for _, img := range images {
				if !flags.Changed(img.flag) {
					continue
				}
				src := ""
				if img.path != "" {
					var err error
					if src, err = readImageFile(img.path, img.kind); err != nil {
						return err
					}
				}
				*img.dst = &src
			}

			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				return s.UpdateSettings(patch)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "school-name", "", "school name")
	flags.StringVar(&code, "school-code", "", "school code")
	flags.StringVar(&address, "school-address", "", "school address")
	flags.StringVar(&font, "font", "", "document font: calibri, times or poppins")
	flags.StringVar(&user, "user-member", "", "member ID of the person preparing minutes")
	flags.StringVar(&logo1, "logo1", "", "left logo image file (empty clears)")
	flags.StringVar(&logo2, "logo2", "", "right logo image file (empty clears)")
	flags.StringVar(&setiausaha, "setiausaha-signature", "", "secretary signature image file (empty clears)")
	flags.StringVar(&ketua, "ketua-signature", "", "committee head signature image file (empty clears)")
	return cmd
}

func (c *CLI) profileMemberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage committee members of the current profile",
	}

	add := &cobra.Command{
		Use:   "add <nama> <jawatan>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				m, err := s.AddMember(docgen.Member{Nama: args[0], Jawatan: args[1]})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.Out, m.ID)
				return err
			})
		},
	}
	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				return s.RemoveMember(args[0])
			})
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSettings(cmd, func(s *docgen.SettingsStore) error {
				p, err := s.Current()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
				for _, m := range p.Settings.Members {
					fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Nama, m.Jawatan)
				}
				return w.Flush()
			})
		},
	}
	cmd.AddCommand(add, remove, list)
	return cmd
}
