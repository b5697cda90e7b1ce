// Command analyze drives the app core headlessly against a running server:
// capture flow, area analysis and address resolution from the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"maisoku/internal/appcore/capture"
	"maisoku/internal/appcore/client"
	"maisoku/internal/appcore/resolver"
	"maisoku/internal/appcore/session"
)

// staticAuthProvider backs the session gate with a pre-issued ID token
// instead of an interactive sign-in flow.
type staticAuthProvider struct {
	token  string
	userID string
}

func (p *staticAuthProvider) SignIn(ctx context.Context) (*session.User, error) {
	if p.token == "" {
		return nil, fmt.Errorf("no ID token configured (set -token or MAISOKU_ID_TOKEN)")
	}
	return &session.User{ID: p.userID}, nil
}

func (p *staticAuthProvider) SignOut(ctx context.Context) error { return nil }

func (p *staticAuthProvider) IDToken(ctx context.Context) (string, error) {
	return p.token, nil
}

func main() {
	_ = godotenv.Load()

	var (
		server  = flag.String("server", envOr("MAISOKU_SERVER", "http://localhost:8080"), "analysis API base URL")
		token   = flag.String("token", os.Getenv("MAISOKU_ID_TOKEN"), "Firebase ID token (empty = anonymous)")
		mode    = flag.String("mode", "area", "camera | area | suggest | reverse | history")
		image   = flag.String("image", "", "image path for camera mode")
		address = flag.String("address", "", "address for area mode, partial input for suggest mode")
		lat     = flag.Float64("lat", 0, "latitude for reverse mode")
		lng     = flag.Float64("lng", 0, "longitude for reverse mode")
		save    = flag.Bool("save", false, "save camera analysis to history")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	gate := session.NewGate(&staticAuthProvider{token: *token, userID: "cli"}, nil, logger)
	api := client.New(*server, gate, logger)

	if *token != "" {
		if _, err := gate.SignIn(ctx); err != nil {
			fatal(err)
		}
		if prefs, err := api.GetPreferences(ctx); err != nil {
			logger.Warn("could not load preferences", "error", err)
		} else {
			gate.PreferencesLoaded(prefs)
		}
		logger.Info("session ready", "state", gate.State())
	}

	switch *mode {
	case "camera":
		runCamera(ctx, api, gate, logger, *image, *save)
	case "area":
		runArea(ctx, api, gate, *address)
	case "suggest":
		runSuggest(ctx, api, logger, *address)
	case "reverse":
		runReverse(ctx, api, logger, *lat, *lng)
	case "history":
		runHistory(ctx, api)
	default:
		fatal(fmt.Errorf("unknown mode %q", *mode))
	}
}

func runCamera(ctx context.Context, api *client.Client, gate *session.Gate, logger *slog.Logger, path string, save bool) {
	if path == "" {
		fatal(fmt.Errorf("camera mode needs -image"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}

	orch := capture.NewOrchestrator(api, gate, logger)
	if err := orch.Start(capture.SourceGallery); err != nil {
		fatal(err)
	}

	result, err := orch.Analyze(ctx, filepath.Base(path), data, save)
	if err != nil {
		fatal(err)
	}
	printJSON(result)
}

func runArea(ctx context.Context, api *client.Client, gate *session.Gate, address string) {
	if address == "" {
		fatal(fmt.Errorf("area mode needs -address"))
	}
	result, err := api.AnalyzeArea(ctx, address, gate.Preferences())
	if err != nil {
		fatal(err)
	}
	printJSON(result)
}

func runSuggest(ctx context.Context, api *client.Client, logger *slog.Logger, partial string) {
	r := resolver.New(api, logger)
	for _, s := range r.Suggest(ctx, partial) {
		fmt.Printf("%s\t%s\n", s.PlaceID, s.Description)
	}
}

func runReverse(ctx context.Context, api *client.Client, logger *slog.Logger, lat, lng float64) {
	r := resolver.New(api, logger)
	resolution, err := r.ResolveFromCoordinates(ctx, lat, lng)
	if err != nil {
		fatal(err)
	}
	printJSON(resolution)
}

func runHistory(ctx context.Context, api *client.Client) {
	entries, err := api.ListHistory(ctx, 0)
	if err != nil {
		fatal(err)
	}
	printJSON(entries)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
