package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/config"
	"ai-kitchen/internal/database"
	"ai-kitchen/internal/logger"
	"ai-kitchen/internal/metrics"
	"ai-kitchen/internal/middleware"
	"ai-kitchen/internal/preferences"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "plan":
		err = runPlan(os.Args[2:])
	case "recipes":
		err = runRecipes(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "usage":
		err = runUsage(os.Args[2:])
	case "metrics-cleanup":
		err = runCleanup(os.Args[2:])
	case "token":
		err = runToken(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: kitchen <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate and store a meal plan")
	fmt.Println("  recipes            Suggest recipes from a list of ingredients")
	fmt.Println("  extract            List the ingredients in a photo")
	fmt.Println("  usage              Show daily model token usage")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  token              Issue an API bearer token for a user")
}

// env is the configuration and storage shared by the commands.
type env struct {
	cfg *config.Config
	db  *database.DB
}

func openEnv() (*env, error) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so stdout stays valid JSON.
	logger.SetupDefault(os.Stderr, cfg.LogLevel)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) wire(ctx context.Context) (*app.Runtime, error) {
	return app.Wire(ctx, e.cfg, e.db.SQL, nil)
}

// preferenceFlags registers the flags every generation command accepts.
func preferenceFlags(fs *flag.FlagSet) func() preferences.Preferences {
	goal := fs.String("goal", "", "Goal, e.g. \"Weight Loss\"")
	diet := fs.String("diet", "", "Comma-separated dietary preferences, e.g. keto-lowcarb")
	allergies := fs.String("allergies", "", "Allergies or restrictions")
	calories := fs.Int("calories", 0, "Daily calorie target (default 2000)")
	return func() preferences.Preferences {
		return preferences.Preferences{
			Goal:               *goal,
			DietaryPreferences: splitList(*diet),
			Allergies:          *allergies,
			CalorieTarget:      *calories,
		}
	}
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	user := fs.String("user", "cli", "User ID owning the plan")
	start := fs.String("start", "", "Start date YYYY-MM-DD (default today)")
	days := fs.Int("days", app.DefaultDays, "Number of days")
	prefs := preferenceFlags(fs)
	fs.Parse(args)

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	ctx := context.Background()
	rt, err := e.wire(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.App.GenerateMealPlan(ctx, *user, *start, *days, prefs())
	return printResult(res, res.Success)
}

func runRecipes(args []string) error {
	fs := flag.NewFlagSet("recipes", flag.ExitOnError)
	ingredients := fs.String("ingredients", "", "Comma-separated ingredients")
	prefs := preferenceFlags(fs)
	fs.Parse(args)

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	ctx := context.Background()
	rt, err := e.wire(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.App.GenerateRecipesFromIngredients(ctx, splitList(*ingredients), prefs())
	return printResult(res, res.Success)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	path := fs.String("image", "", "Path to a photo of ingredients")
	fs.Parse(args)

	var image []byte
	if *path != "" {
		data, err := os.ReadFile(*path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		image = data
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	ctx := context.Background()
	rt, err := e.wire(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.App.ExtractIngredients(ctx, image)
	return printResult(res, res.Success)
}

func runUsage(args []string) error {
	fs := flag.NewFlagSet("usage", flag.ExitOnError)
	days := fs.Int("days", 7, "Show the last N days")
	fs.Parse(args)

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	usage, err := metrics.NewStore(e.db.SQL).GetDailyUsage(*days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}
	fmt.Printf("%-12s %10s %12s %8s\n", "DATE", "PROMPT", "COMPLETION", "EXECS")
	for _, u := range usage {
		fmt.Printf("%-12s %10d %12d %8d\n", u.Date, u.TotalPrompt, u.TotalCompletion, u.TotalExecution)
	}
	return nil
}

func runCleanup(args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	fs.Parse(args)

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.db.Close()

	affected, err := metrics.NewStore(e.db.SQL).Cleanup(*days)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "User ID to issue the token for")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	fs.Parse(args)

	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}

	token, err := middleware.IssueToken([]byte(secret), *user, *ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}

// printResult writes an action envelope as indented JSON. A failed action
// is reported as an error after printing.
func printResult(res any, success bool) error {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	if !success {
		return fmt.Errorf("action failed")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
