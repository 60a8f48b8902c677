package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"

	productform "github.com/goliatone/go-productform"
	"github.com/goliatone/go-productform/internal/config"
	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/graphql"
	"github.com/goliatone/go-productform/pkg/markdown"
	"github.com/goliatone/go-productform/pkg/navigation"
	"github.com/goliatone/go-productform/pkg/renderers/tui"
	"github.com/goliatone/go-productform/pkg/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "config file (YAML)")
	schemaPath := flag.String("schema", "", "form document path (embedded product schema if empty)")
	prefill := flag.String("prefill", "", "JSON Patch document applied before prompting")
	printDirectives := flag.Bool("directives", false, "print the resolved render directives as JSON and exit")
	preview := flag.Bool("preview", false, "print an HTML preview after markdown fields")
	verbose := flag.Bool("v", false, "log submission phases to stderr")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *schemaPath != "" {
		cfg.Schema = *schemaPath
	}

	s, err := productform.LoadSchema(cfg.Schema)
	if err != nil {
		log.Fatalf("loading schema: %v", err)
	}

	if *printDirectives {
		directives, err := productform.Directives(s)
		if err != nil {
			log.Fatalf("resolving directives: %v", err)
		}
		out, err := sonic.ConfigStd.MarshalIndent(directives, "", "  ")
		if err != nil {
			log.Fatalf("encoding directives: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	creator, closeCreator, err := newCreator(ctx, cfg)
	if err != nil {
		log.Fatalf("configuring persistence: %v", err)
	}
	defer closeCreator()

	routes, err := navigation.NewRoutes(cfg.Routes.Listing, cfg.Routes.Detail)
	if err != nil {
		log.Fatalf("compiling routes: %v", err)
	}

	opts := []form.Option{
		form.WithRoutes(routes),
		form.WithPictureField(cfg.Pictures.Field),
		form.WithWebShopPictures(cfg.WebShop()),
		form.WithNavigator(form.NavigatorFunc(func(target string) {
			fmt.Println(target)
		})),
	}
	logger := log.New(os.Stderr, "productform: ", log.LstdFlags)
	if *verbose {
		opts = append(opts, form.WithLogger(logger))
	}

	session, err := productform.NewSession(s, creator, opts...)
	if err != nil {
		log.Fatalf("opening form: %v", err)
	}

	if *prefill != "" {
		patch, err := os.ReadFile(*prefill)
		if err != nil {
			log.Fatalf("reading prefill: %v", err)
		}
		if err := session.ApplyPatch(patch); err != nil {
			log.Fatalf("applying prefill: %v", err)
		}
	}

	shellOpts := []tui.Option{tui.WithLogger(logger)}
	if *preview {
		shellOpts = append(shellOpts, tui.WithPreview(markdown.Preview))
	}

	result, err := tui.New(shellOpts...).Run(ctx, session)
	switch {
	case errors.Is(err, tui.ErrCancelled):
		fmt.Println(routes.Listing())
		return
	case errors.Is(err, tui.ErrAborted):
		os.Exit(130)
	case err != nil:
		var childErr *form.ChildCreationError
		if errors.As(err, &childErr) {
			log.Fatalf("product %d saved, pictures failed: %v", childErr.ProductID, childErr.Err)
		}
		log.Fatalf("submitting product: %v", err)
	}
	if *verbose {
		logger.Printf("submission %s created product %d with %d pictures", result.SubmissionID, result.ProductID, len(result.PictureIDs))
	}
}

func newCreator(ctx context.Context, cfg config.Config) (form.Creator, func(), error) {
	if cfg.UseGraphQL() {
		opts := []graphql.Option{
			graphql.WithTimeout(cfg.GraphQL.Timeout),
			graphql.WithColumns(cfg.GraphQL.Columns),
		}
		for name, value := range cfg.GraphQL.Headers {
			opts = append(opts, graphql.WithHeader(name, value))
		}
		if cfg.GraphQL.Secret != "" {
			opts = append(opts, graphql.WithHeader(cfg.GraphQL.SecretHeader, cfg.GraphQL.Secret))
		}
		client, err := graphql.New(cfg.GraphQL.Endpoint, opts...)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}

	store, err := sqlite.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("closing database: %v", err)
		}
	}, nil
}
