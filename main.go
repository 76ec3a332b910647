// Command tracker manages the CSV-backed participation tracker: it runs
// schema migrations, creates and restores backups, and applies event and
// cohort participation updates from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracker/backup"
	"tracker/config"
	"tracker/engine"
	"tracker/migration"
	"tracker/resolver"
	"tracker/schema"
	"tracker/store"
)

// app wires the components together for one invocation
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    *store.Store
	resolver *resolver.Resolver
	audit    *resolver.AuditLog
	engine   *engine.Engine
	backups  *backup.Manager
}

// newApp builds the component graph. The migration chain runs before any
// table is exposed to the update engine.
func newApp(cfgPath string, migrate bool) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg.LogLevel)
	reg := schema.Default()

	st, err := store.New(cfg.DataDir, reg, log, store.WithCacheTTL(cfg.CacheTTL.Duration))
	if err != nil {
		return nil, err
	}
	audit, err := resolver.NewAuditLog(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	backups := backup.New(cfg.DataDir, reg, log)

	if migrate {
		chain, err := migration.NewChain(cfg.DataDir, migration.CurrentVersion,
			migration.DefaultSteps(), backups, log)
		if err != nil {
			return nil, err
		}
		if err := chain.Run(); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		resolver: resolver.New(log),
		audit:    audit,
		engine:   engine.New(st, audit, log),
		backups:  backups,
	}, nil
}

// resolveInput validates identifiers from an inline list or a file
func (a *app) resolveInput(inline, file string) (resolver.Resolution, error) {
	raw := inline
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return resolver.Resolution{}, err
		}
		raw = resolver.DecodeUpload(data)
	}
	employees, err := a.store.Load(schema.Employees)
	if err != nil {
		return resolver.Resolution{}, err
	}
	return a.resolver.Resolve(raw, employees), nil
}

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:          "tracker",
		Short:        "CSV-backed participation tracker",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "tracker.toml", "config file")

	root.AddCommand(
		migrateCmd(&cfgPath),
		backupCmd(&cfgPath),
		tablesCmd(&cfgPath),
		resolveCmd(&cfgPath),
		newEventCmd(&cfgPath),
		updateEventCmd(&cfgPath),
		updateCohortCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run the schema migration chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := newApp(*cfgPath, true)
			return err
		},
	}
}

func backupCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot and restore table files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Snapshot all table files",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(*cfgPath, false)
				if err != nil {
					return err
				}
				path, err := a.backups.Create()
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available backups",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(*cfgPath, false)
				if err != nil {
					return err
				}
				names, err := a.backups.List()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "restore <name>",
			Short: "Restore a backup over the current table files",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(*cfgPath, false)
				if err != nil {
					return err
				}
				return a.backups.Restore(filepath.Join(a.backups.Root(), args[0]))
			},
		},
	)
	return cmd
}

func tablesCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, true)
			if err != nil {
				return err
			}
			for _, key := range a.store.Registry().Keys() {
				table, err := a.store.Load(key)
				if err != nil {
					return err
				}
				fmt.Printf("%-14s %d rows, %d columns\n", key, len(table.Rows), len(table.Columns))
			}
			return nil
		},
	}
}

func resolveCmd(cfgPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "resolve [identifiers]",
		Short: "Validate a list of Standard IDs or emails against the employee table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, true)
			if err != nil {
				return err
			}
			res, err := a.resolveInput(strings.Join(args, "\n"), file)
			if err != nil {
				return err
			}
			fmt.Printf("resolved: %s\n", strings.Join(res.Keys, ", "))
			if len(res.Unresolved) > 0 {
				fmt.Printf("could not find: %s\n", strings.Join(res.Unresolved, ", "))
				if err := a.audit.Record(res.Unresolved); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read identifiers from a file instead")
	return cmd
}

func newEventCmd(cfgPath *string) *cobra.Command {
	var name, date, category, workshop string
	cmd := &cobra.Command{
		Use:   "new-event",
		Short: "Create an event with a generated ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, true)
			if err != nil {
				return err
			}
			if !engine.ValidCategory(category) {
				return fmt.Errorf("unknown category '%s' (valid: %s)",
					category, strings.Join(engine.Categories, ", "))
			}
			day, err := time.Parse(store.DateLayout, date)
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}

			a.store.Invalidate()
			events, err := a.store.Load(schema.Events)
			if err != nil {
				return err
			}
			id := engine.GenerateEventID(events, category, day)
			events.Append(store.Row{
				schema.ColEventID:  id,
				schema.ColName:     name,
				schema.ColDate:     day.Format(store.DateLayout),
				schema.ColCategory: category,
				schema.ColWorkshop: workshop,
			})
			if err := a.store.Save(schema.Events, events); err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "event name")
	cmd.Flags().StringVar(&date, "date", "", "event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "event category")
	cmd.Flags().StringVar(&workshop, "workshop", "", "workshop number, if this is a workshop instance")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("category")
	return cmd
}

func updateEventCmd(cfgPath *string) *cobra.Command {
	var ids, file string
	var registered, participated, hosted bool
	cmd := &cobra.Command{
		Use:   "update-event <event-id>",
		Short: "Mark employees registered, participated or hosting for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, true)
			if err != nil {
				return err
			}
			res, err := a.resolveInput(ids, file)
			if err != nil {
				return err
			}
			delta, err := a.engine.UpdateEventStatus(engine.EventUpdate{
				EventID:      args[0],
				EmployeeKeys: res.Keys,
				Unresolved:   res.Unresolved,
				Registered:   registered,
				Participated: participated,
				Hosted:       hosted,
			})
			if err != nil {
				return err
			}
			fmt.Printf("registered +%d, participated +%d, hosted +%d\n",
				delta.Registered, delta.Participated, delta.Hosted)
			return nil
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "Standard IDs or emails, comma or newline separated")
	cmd.Flags().StringVar(&file, "file", "", "read identifiers from a file instead")
	cmd.Flags().BoolVar(&registered, "registered", false, "mark registered")
	cmd.Flags().BoolVar(&participated, "participated", false, "mark participated")
	cmd.Flags().BoolVar(&hosted, "hosted", false, "mark hosting")
	return cmd
}

func updateCohortCmd(cfgPath *string) *cobra.Command {
	var ids, file, nominatedBy, notes string
	var nominated, invited, joined, remove bool
	cmd := &cobra.Command{
		Use:   "update-cohort <name>",
		Short: "Add employees to or remove them from a cohort's membership lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath, true)
			if err != nil {
				return err
			}
			res, err := a.resolveInput(ids, file)
			if err != nil {
				return err
			}
			action := engine.ActionAdd
			if remove {
				action = engine.ActionRemove
			}
			delta, err := a.engine.UpdateCohortMembership(engine.CohortUpdate{
				Cohort:       args[0],
				EmployeeKeys: res.Keys,
				Unresolved:   res.Unresolved,
				Nominated:    nominated,
				Invited:      invited,
				Joined:       joined,
				NominatedBy:  nominatedBy,
				Notes:        notes,
				Action:       action,
			})
			if err != nil {
				return err
			}
			verb := "added"
			if remove {
				verb = "removed"
			}
			fmt.Printf("nominated %s %d, invited %s %d, joined %s %d\n",
				verb, delta.Nominated, verb, delta.Invited, verb, delta.Joined)
			return nil
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "Standard IDs or emails, comma or newline separated")
	cmd.Flags().StringVar(&file, "file", "", "read identifiers from a file instead")
	cmd.Flags().BoolVar(&nominated, "nominated", false, "nominated dimension")
	cmd.Flags().BoolVar(&invited, "invited", false, "invited dimension")
	cmd.Flags().BoolVar(&joined, "joined", false, "joined dimension")
	cmd.Flags().BoolVar(&remove, "remove", false, "remove instead of add")
	cmd.Flags().StringVar(&nominatedBy, "nominated-by", "", "who nominated (recorded on add)")
	cmd.Flags().StringVar(&notes, "notes", "", "note appended to newly affected participants")
	return cmd
}
