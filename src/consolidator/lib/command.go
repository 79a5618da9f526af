package consolidator

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-analysis/src/common/archive"
	"sales-analysis/src/common/config"
	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/storage"
)

// NewRootCommand builds the consolidator CLI. The date is read from in when
// --date is not given.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var configFile string
	var v *viper.Viper

	cmd := &cobra.Command{
		Use:           "consolidator",
		Short:         "Consolidate the sales rollups of a day into a global report",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			v, err = config.InitConfig(configFile)
			if err != nil {
				return err
			}

			for key, flag := range map[string]string{
				"consolidator.date":    "date",
				"consolidator.top":     "top",
				"consolidator.workers": "workers",
				"consolidator.archive": "archive",
			} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}

			if err := logger.InitGlobalLoggerWithOutput(cmd.ErrOrStderr(), v.GetString("log.level")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, in, out)
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to the configuration file")
	flags.String("date", "", "date of the artifacts to consolidate (DD-MM-YYYY)")
	flags.Int("top", 0, "also list the k most profitable stores")
	flags.Int("workers", 0, "number of artifacts read in parallel")
	flags.Bool("archive", false, "store the report in postgres")

	return cmd
}

func run(ctx context.Context, v *viper.Viper, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.GetLoggerWithPrefix("[MAIN]")

	date := v.GetString("consolidator.date")
	if date == "" {
		var err error
		if date, err = ReadDate(in, out); err != nil {
			return err
		}
	}

	store, err := storage.New(ctx, storage.Config{
		Mode:         v.GetString("storage.mode"),
		Root:         v.GetString("storage.root"),
		EmulatorHost: v.GetString("storage.emulatorHost"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	var archiver Archiver
	if v.GetBool("consolidator.archive") {
		postgres, err := archive.NewPostgresArchive(v.GetString("archive.dsn"))
		if err != nil {
			return err
		}
		defer postgres.Close()

		if err := postgres.EnsureSchema(ctx); err != nil {
			return err
		}
		archiver = postgres
	}

	runConf := RunConfig{
		Bucket:  v.GetString("buckets.output"),
		Date:    date,
		Top:     v.GetInt("consolidator.top"),
		Workers: v.GetInt("consolidator.workers"),
	}
	log.Debugf("Consolidating %s from bucket %s with %d workers", runConf.Date, runConf.Bucket, runConf.Workers)

	_, err = NewRunner(runConf, store, archiver).Run(ctx, out)
	return err
}
