package cli

import (
	"github.com/spf13/cobra"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/internal/server"
	"github.com/glorpus-work/schoolyard/pkg/archive"
	"github.com/glorpus-work/schoolyard/pkg/auth"
	"github.com/glorpus-work/schoolyard/pkg/fulfillment"
	"github.com/glorpus-work/schoolyard/pkg/hook"
	"github.com/glorpus-work/schoolyard/pkg/media"
	"github.com/glorpus-work/schoolyard/pkg/payment"
	"github.com/glorpus-work/schoolyard/pkg/scratch"
	"github.com/glorpus-work/schoolyard/pkg/store"
	"github.com/glorpus-work/schoolyard/pkg/widget"
)

// NewServeCmd creates the serve command that runs the platform HTTP server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the platform HTTP server",
		Long:  "Start the HTTP server that serves course downloads, checkout, media and page settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	ctx := cmd.Context()

	db, err := store.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	repos := store.NewRepositories(db)

	var authn auth.Authenticator
	if cfg.MediaService.APIKey != "" {
		authn = auth.APIKeyAuth{Key: cfg.MediaService.APIKey}
	}
	mediaSvc := media.NewService(cfg.MediaService.Endpoint, cfg.MediaService.Timeout, authn)

	delivery := &fulfillment.Service{
		Links:    repos.Links,
		Courses:  repos.Courses,
		Lessons:  repos.Lessons,
		Media:    mediaSvc,
		Fetcher:  media.NewHTTPFetcher(cfg.Downloads.FetchTimeout, "schoolyard/"+Version),
		Archiver: archive.NewBuilder(),
		Ledger:   &fulfillment.PurchaseLedger{Users: repos.Users},
		Scratch:  scratch.NewManager(cfg.Downloads.TempRoot),

		EnforceSingleUse: !cfg.Downloads.AllowRepeatDownloads,
	}

	hooks := hook.NewHookManager()
	if err := hook.LoadHooksFromDir(hooks, cfg.Hooks.Dir); err != nil {
		return err
	}

	payments := &payment.InitiationService{
		Courses: repos.Courses,
		Users:   repos.Users,
		Orders:  repos.Orders,
		Methods: map[string]payment.Method{
			payment.FreeMethod{}.Name(): payment.FreeMethod{},
		},
	}

	router := server.NewRouter(server.Deps{
		Sites:        repos.Sites,
		Fulfillment:  delivery,
		Media:        mediaSvc,
		Payments:     payments,
		Widgets:      widget.NewRegistry(),
		Hooks:        hooks,
		UserResolver: &server.HeaderUserResolver{Users: repos.Users},

		PlatformVersion: Version,
	})

	return server.New(cfg, router).Run(ctx)
}
