package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mmeshcher/cheapplay/internal/model"
)

// orderService описывает операции над заказами, доступные из CLI.
type orderService interface {
	CreateOrder(ctx context.Context, code, email string) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, status model.Status, limit int) ([]model.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*model.Order, error)
	Close() error
}

type openFunc func(dsn string) (orderService, error)

const commandTimeout = 30 * time.Second

func newRootCommand(open openFunc) *cobra.Command {
	var dsn string

	rootCmd := &cobra.Command{
		Use:          "storectl",
		Short:        "manage cheapplay orders",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dsn, "database", "d", os.Getenv("DATABASE_URI"), "database URI")

	withService := func(fn func(ctx context.Context, svc orderService, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return errors.New("database URI is required: set DATABASE_URI or pass -d")
			}

			svc, err := open(dsn)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer svc.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			return fn(ctx, svc, cmd.OutOrStdout(), args)
		}
	}

	rootCmd.AddCommand(
		createCommand(withService),
		listCommand(withService),
		showCommand(withService),
		cancelCommand(withService),
		deliverCommand(withService),
		migrateCommand(withService),
	)

	return rootCmd
}

type runner func(fn func(ctx context.Context, svc orderService, out io.Writer, args []string) error) func(*cobra.Command, []string) error

func createCommand(with runner) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create [code]",
		Short: "create a pending order for a redemption code",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc orderService, out io.Writer, args []string) error {
			o, err := svc.CreateOrder(ctx, args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, o.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "customer email")

	return cmd
}

func listCommand(with runner) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list recent orders",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, svc orderService, out io.Writer, _ []string) error {
			var st model.Status
			if status != "" {
				parsed, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				st = parsed
			}

			orders, err := svc.ListOrders(ctx, st, limit)
			if err != nil {
				return err
			}
			return renderOrders(out, orders)
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of orders")

	return cmd
}

func showCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "show a single order",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc orderService, out io.Writer, args []string) error {
			o, err := svc.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			return renderOrders(out, []model.Order{*o})
		}),
	}
}

func cancelCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [id]",
		Short: "cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc orderService, out io.Writer, args []string) error {
			o, err := svc.CancelOrder(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", o.ID, o.Status)
			return nil
		}),
	}
}

func deliverCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "deliver [id]",
		Short: "mark a completed order as delivered",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, svc orderService, out io.Writer, args []string) error {
			o, err := svc.MarkDelivered(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", o.ID, o.Status)
			return nil
		}),
	}
}

// migrateCommand применяет миграции: они выполняются при открытии хранилища.
func migrateCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		Args:  cobra.NoArgs,
		RunE: with(func(_ context.Context, _ orderService, out io.Writer, _ []string) error {
			fmt.Fprintln(out, "Migrated up")
			return nil
		}),
	}
}

func renderOrders(out io.Writer, orders []model.Order) error {
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Code", "Email", "Status", "Redeemed", "Access code", "Updated")

	for _, o := range orders {
		access := "-"
		if o.AccessCode != nil {
			access = "issued"
			if o.AccessCode.Submitted {
				access = "answered"
			}
		}

		if err := table.Append(
			o.ID,
			o.Code,
			o.Email,
			string(o.Status),
			fmt.Sprintf("%t", o.IsRedeemed),
			access,
			o.UpdatedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}

	return table.Render()
}
