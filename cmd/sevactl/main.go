// Command sevactl runs maintenance tasks against the marketplace database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"seva-kendra/config"
	"seva-kendra/database"
	"seva-kendra/models"
	"seva-kendra/store"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sevactl",
		Short:        "Maintenance tasks for the Hindu Seva Kendra database",
		SilenceUsage: true,
	}
	root.AddCommand(newIndexesCmd(), newPurgeUsersCmd(), newVendorsCmd(), newNormalizeEmailsCmd())
	return root
}

// withDatabase loads the configuration, connects and runs fn
func withDatabase(ctx context.Context, fn func(ctx context.Context, db *mongo.Database) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	return fn(ctx, client.Database(cfg.Mongo.Database))
}

func newIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the unique and query indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
				if err := database.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "indexes are up to date")
				return nil
			})
		},
	}
}

// nameCounter is the part of the users store purge-users needs
type nameCounter interface {
	CountByName(ctx context.Context, name string) (int64, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
}

func newPurgeUsersCmd() *cobra.Command {
	var (
		name    string
		confirm bool
	)
	cmd := &cobra.Command{
		Use:   "purge-users",
		Short: "Delete users with an exact name together with their vendor profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
				return purgeUsers(ctx, cmd.OutOrStdout(), store.New(db, nil).Users, name, confirm)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "exact user name to delete")
	cmd.Flags().BoolVar(&confirm, "yes", false, "delete instead of only counting")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func purgeUsers(ctx context.Context, out io.Writer, users nameCounter, name string, confirm bool) error {
	if !confirm {
		n, err := users.CountByName(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d user(s) named %q would be deleted, rerun with --yes\n", n, name)
		return nil
	}
	n, err := users.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d user(s) named %q\n", n, name)
	return nil
}

// vendorLister is the part of the admin store the vendors command needs
type vendorLister interface {
	VendorsWithUsers(ctx context.Context, status string) ([]models.VendorWithUser, error)
}

// statusCounter is the part of the vendors store the summary line needs
type statusCounter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

func newVendorsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "List vendor applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && status != models.VendorStatusPending && !models.IsDecisionStatus(status) {
				return fmt.Errorf("invalid status %q", status)
			}
			return withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
				st := store.New(db, nil)
				return listVendors(ctx, cmd.OutOrStdout(), st.Admin, st.Vendors, status)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved or rejected; empty lists all")
	return cmd
}

func listVendors(ctx context.Context, out io.Writer, views vendorLister, counts statusCounter, status string) error {
	vendors, err := views.VendorsWithUsers(ctx, status)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER ID\tNAME\tEMAIL\tSERVICE\tSTATUS\tAPPLIED")
	for _, v := range vendors {
		row := v.Row()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Name, row.Email, row.ServiceType, row.VerificationStatus,
			row.ApplicationDate.Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for i, st := range []string{models.VendorStatusPending, models.VendorStatusApproved, models.VendorStatusRejected} {
		n, err := counts.CountByStatus(ctx, st)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprint(out, "  ")
		}
		fmt.Fprintf(out, "%s: %d", st, n)
	}
	fmt.Fprintln(out)
	return nil
}

// emailRewriter is the part of the users store normalize-emails needs
type emailRewriter interface {
	UnnormalizedEmails(ctx context.Context) ([]models.User, error)
	SetEmail(ctx context.Context, id primitive.ObjectID, email string) error
}

func newNormalizeEmailsCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "normalize-emails",
		Short: "Trim and lower-case stored emails so older accounts can log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *mongo.Database) error {
				return normalizeEmails(ctx, cmd.OutOrStdout(), store.New(db, nil).Users, confirm)
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "rewrite instead of only listing")
	return cmd
}

// normalizeEmails rewrites emails to the form register and login use.
// Accounts whose normalized address is already taken are left alone and
// reported; they need a manual merge.
func normalizeEmails(ctx context.Context, out io.Writer, users emailRewriter, confirm bool) error {
	pending, err := users.UnnormalizedEmails(ctx)
	if err != nil {
		return err
	}
	var updated, conflicts int
	for _, u := range pending {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if !confirm {
			fmt.Fprintf(out, "%s\t%q -> %q\n", u.ID.Hex(), u.Email, email)
			continue
		}
		switch err := users.SetEmail(ctx, u.ID, email); {
		case errors.Is(err, store.ErrDuplicateEmail):
			conflicts++
			fmt.Fprintf(out, "conflict: %s %q, %q is used by another account\n", u.ID.Hex(), u.Email, email)
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		default:
			updated++
		}
	}
	if !confirm {
		fmt.Fprintf(out, "%d email(s) would be rewritten, rerun with --yes\n", len(pending))
		return nil
	}
	fmt.Fprintf(out, "rewrote %d email(s)\n", updated)
	if conflicts > 0 {
		return fmt.Errorf("%d account(s) share an email with another account", conflicts)
	}
	return nil
}
