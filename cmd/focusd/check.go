package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pabu-app/focusd/internal/config"
	"github.com/pabu-app/focusd/internal/images"
	"github.com/pabu-app/focusd/internal/notify"
	"github.com/pabu-app/focusd/internal/recommend"
	"github.com/pabu-app/focusd/internal/storage"
)

var (
	checkDescription string
	checkSendEmail   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check external service integrations",
	Long:  `Check how focusd's external collaborators behave for given inputs without starting the daemon.`,
}

var checkEmailCmd = &cobra.Command{
	Use:   "email ADDRESS",
	Short: "Check email notification delivery",
	Long:  `Validate a notification address and optionally deliver a test session summary through the configured email service.`,
	Example: `  focusd -c config.yaml check email parent@example.com
  focusd check email --send parent@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckEmail,
}

var checkImageCmd = &cobra.Command{
	Use:   "image TITLE",
	Short: "Check project image search",
	Long:  `Show the search query and resulting image URL for a project title.`,
	Example: `  focusd check image "Ocean Explorers"
  focusd check image --description "marine biology for kids" "Ocean Explorers"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckImage,
}

var checkRecommendCmd = &cobra.Command{
	Use:   "recommend TITLE",
	Short: "Check resource recommendations",
	Long:  `Generate the recommendation list for a project title, bypassing the cache.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckRecommend,
}

func init() {
	checkImageCmd.Flags().StringVar(&checkDescription, "description", "", "Project description used in the search query")
	checkRecommendCmd.Flags().StringVar(&checkDescription, "description", "", "Project description passed to the finder")
	checkEmailCmd.Flags().BoolVar(&checkSendEmail, "send", false, "Actually deliver a test summary email")

	checkCmd.AddCommand(checkEmailCmd)
	checkCmd.AddCommand(checkImageCmd)
	checkCmd.AddCommand(checkRecommendCmd)
	rootCmd.AddCommand(checkCmd)
}

// quietLogger suppresses everything below errors so check output stays clean.
func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
}

func runCheckEmail(cmd *cobra.Command, args []string) error {
	address := args[0]

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	cyan.Println("EMAIL NOTIFICATION CHECK")
	fmt.Println()
	fmt.Printf("Address:    %s\n", address)

	cyan.Print("Format:     ")
	if !notify.IsValidEmail(address) {
		red.Println("INVALID")
		fmt.Println("            - Notifications to this address would be skipped")
		return nil
	}
	green.Println("VALID")

	if !checkSendEmail {
		fmt.Println("            - Run with --send to deliver a test summary")
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	notifier := notify.NewEmailClient(notify.Config{
		BaseURL:    cfg.Email.BaseURL,
		ServiceID:  cfg.Email.ServiceID,
		TemplateID: cfg.Email.TemplateID,
		PublicKey:  cfg.Email.PublicKey,
		PrivateKey: cfg.Email.PrivateKey,
		Timeout:    parseDuration(cfg.Email.Timeout, 30*time.Second),
	}, quietLogger())

	now := time.Now()
	entry := storage.SessionHistoryEntry{
		ID:          "check",
		ProjectName: "Test Project",
		StartTime:   now.Add(-30 * time.Minute),
		EndTime:     now,
		Duration:    30 * 60 * 1000,
		URLsViewed: []storage.VisitEntry{
			{URL: "https://example.com", Title: "Example", Timestamp: now.Add(-30 * time.Minute), Duration: 30 * 60 * 1000},
		},
		Summary: "Test summary from focusd check.",
	}

	cyan.Print("Delivery:   ")
	if notifier.SendSummary(cmd.Context(), entry, address, "Test") {
		green.Println("SENT")
	} else {
		red.Println("FAILED")
		fmt.Println("            - See error log above for details")
	}
	return nil
}

func runCheckImage(cmd *cobra.Command, args []string) error {
	title := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finder := images.NewClient(images.Config{
		APIKey:  cfg.Images.APIKey,
		BaseURL: cfg.Images.BaseURL,
	}, quietLogger())

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("PROJECT IMAGE CHECK")
	fmt.Println()
	fmt.Printf("Title:       %s\n", title)
	if checkDescription != "" {
		fmt.Printf("Description: %s\n", checkDescription)
	}
	fmt.Printf("Image:       %s\n", finder.FindProjectImage(ctx, title, checkDescription))
	fmt.Printf("Fallback:    %s\n", images.FallbackImage(title, checkDescription))
	return nil
}

func runCheckRecommend(cmd *cobra.Command, args []string) error {
	title := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	fmt.Println()
	cyan.Println("RECOMMENDATION CHECK")
	fmt.Println()
	fmt.Printf("Title:      %s\n", title)

	p := storage.Project{
		ID:               "check",
		Title:            title,
		ShortDescription: checkDescription,
	}

	finder := recommend.NewFinder(recommend.FinderConfig{
		APIKey:     cfg.Recommender.APIKey,
		BaseURL:    cfg.Recommender.BaseURL,
		Model:      cfg.Recommender.Model,
		MinResults: cfg.Recommender.MinResults,
	})

	var recs []storage.Recommendation
	if finder == nil {
		yellow.Println("No recommender API key configured, showing curated fallback")
		recs = recommend.FallbackRecommendations(title)
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		generated, err := finder.Generate(ctx, p)
		if err != nil {
			yellow.Printf("Generation failed (%v), showing curated fallback\n", err)
			recs = recommend.FallbackRecommendations(title)
		} else {
			recs = generated
		}
	}

	fmt.Println()
	for i, r := range recs {
		fmt.Printf("%2d. %s\n    %s\n", i+1, r.Title, r.URL)
	}
	return nil
}
