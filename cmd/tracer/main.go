package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dorsu/alumnitracer/internal/app/avatar"
	"github.com/dorsu/alumnitracer/internal/app/client"
	"github.com/dorsu/alumnitracer/internal/app/export"
	"github.com/dorsu/alumnitracer/internal/app/formstate"
	"github.com/dorsu/alumnitracer/internal/app/models"
	"github.com/dorsu/alumnitracer/internal/app/models/dto"
	"github.com/dorsu/alumnitracer/internal/app/profile"
	"github.com/dorsu/alumnitracer/internal/app/survey"
	"github.com/dorsu/alumnitracer/internal/config"
	"github.com/dorsu/alumnitracer/internal/pkg/clientstorage"
	"github.com/dorsu/alumnitracer/internal/pkg/events"
	"github.com/dorsu/alumnitracer/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "tracer",
		Usage: "alumni tracer survey client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the config file"},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "authenticate and cache the issued token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				},
				Action: runLogin,
			},
			{
				Name:   "logout",
				Usage:  "drop the cached token and account state",
				Action: runLogout,
			},
			{
				Name:  "profile",
				Usage: "account profile operations",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "fetch and print the profile", Action: runProfileShow},
					{
						Name:  "update",
						Usage: "patch profile fields, optionally with a new image",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "full-name"},
							&cli.StringFlag{Name: "email"},
							&cli.StringFlag{Name: "program"},
							&cli.IntFlag{Name: "year"},
							&cli.StringFlag{Name: "image", Usage: "path to an image file"},
						},
						Action: runProfileUpdate,
					},
					{
						Name:  "delete",
						Usage: "delete the account",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Usage: "confirm deletion"},
						},
						Action: runProfileDelete,
					},
				},
			},
			{
				Name:  "survey",
				Usage: "survey response operations",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print the current submission", Action: runSurveyShow},
					{
						Name:      "submit",
						Usage:     "edit fields and submit, with a confirmation step",
						ArgsUsage: "[field=value ...]",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Usage: "confirm the submission"},
						},
						Action: runSurveySubmit,
					},
				},
			},
			{
				Name:  "export",
				Usage: "render the submission as a document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "html", Usage: "html or csv"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime bundles the wired client-side services for one invocation.
type runtime struct {
	cfg     *config.Config
	storage *clientstorage.Store
	tokens  *client.TokenStore
	api     *client.Client
	bus     *events.Bus
	profile *profile.Service
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
		Output: os.Stderr,
	})

	storage, err := clientstorage.New(cfg.Storage.StateDir)
	if err != nil {
		return nil, err
	}

	tokens := client.NewTokenStore(storage, cfg.TokenWait(), cfg.TokenPollInterval())
	api := client.New(cfg.API.BaseURL, cfg.RequestTimeout(), tokens)
	bus := events.NewBus()
	svc := profile.NewService(api, cfg.API.BaseURL, storage, bus)

	// Pick up state written by another tracer process (login elsewhere,
	// profile refresh) while this one runs.
	storage.Watch([]string{clientstorage.KeyCurrentUser, clientstorage.KeyToken, clientstorage.KeyUserID}, cfg.StorageWatchInterval())

	return &runtime{
		cfg:     cfg,
		storage: storage,
		tokens:  tokens,
		api:     api,
		bus:     bus,
		profile: svc,
	}, nil
}

func (r *runtime) close() {
	r.storage.Close()
}

// alumniID resolves the logged-in account id from the cached state.
func (r *runtime) alumniID() (int64, error) {
	raw, ok := r.storage.Get(clientstorage.KeyUserID)
	if !ok {
		return 0, fmt.Errorf("not logged in, run `tracer login` first")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt account state: %w", err)
	}
	return id, nil
}

func runLogin(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	resp, err := rt.api.Login(c.Context, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}

	p := dto.ProfileFromWire(resp.User, rt.cfg.API.BaseURL)
	if p.ID != 0 {
		if err := rt.profile.SetAccount(p.ID); err != nil {
			return err
		}
	}

	fmt.Printf("logged in as %s (account %d)\n", p.Username, p.ID)
	return nil
}

func runLogout(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.tokens.Clear(); err != nil {
		return err
	}
	for _, key := range []string{clientstorage.KeyUserID, clientstorage.KeyCurrentUser} {
		if err := rt.storage.Delete(key); err != nil {
			return err
		}
	}
	fmt.Println("logged out")
	return nil
}

func runProfileShow(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	p, err := rt.profile.Fetch(c.Context)
	if err != nil {
		return err
	}

	resolver := avatar.NewResolver(rt.cfg.API.BaseURL, avatar.NewHTTPProber(5*time.Second))
	if url, ok := resolver.Resolve(c.Context, *p); ok {
		p.ImageURL = url
	}

	printJSON(p)
	return nil
}

func runProfileUpdate(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	var upd dto.ProfileUpdate
	if c.IsSet("full-name") {
		v := c.String("full-name")
		upd.FullName = &v
	}
	if c.IsSet("email") {
		v := c.String("email")
		upd.Email = &v
	}
	if c.IsSet("program") {
		v := c.String("program")
		upd.ProgramCourse = &v
	}
	if c.IsSet("year") {
		v := c.Int("year")
		upd.YearGraduated = &v
	}

	var image *client.ImageFile
	if path := c.String("image"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		image = &client.ImageFile{Name: path, Content: content}
	}

	p, err := rt.profile.Save(c.Context, upd, image)
	if err != nil {
		return err
	}
	printJSON(p)
	return nil
}

func runProfileDelete(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("account deletion is permanent, re-run with --yes to confirm")
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.profile.Delete(c.Context); err != nil {
		return err
	}
	fmt.Println("account deleted")
	return nil
}

func newSurveyController(c *cli.Context, rt *runtime) (*survey.Controller, *formstate.Store, error) {
	id, err := rt.alumniID()
	if err != nil {
		return nil, nil, err
	}
	form := formstate.New()
	ctrl := survey.NewController(rt.api, form, id)
	if err := ctrl.Load(c.Context); err != nil {
		return nil, nil, err
	}
	return ctrl, form, nil
}

func runSurveyShow(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctrl, form, err := newSurveyController(c, rt)
	if err != nil {
		return err
	}

	if ctrl.State() == survey.StateNoSubmission {
		fmt.Println("no submission yet")
		return nil
	}
	printJSON(form.Snapshot())
	return nil
}

func runSurveySubmit(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctrl, form, err := newSurveyController(c, rt)
	if err != nil {
		return err
	}

	if ctrl.State() == survey.StateReadOnly {
		if err := ctrl.BeginEdit(); err != nil {
			return err
		}
	}

	for _, arg := range c.Args().Slice() {
		field, raw, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("expected field=value, got %q", arg)
		}
		if err := form.Set(field, parseFieldValue(field, raw)); err != nil {
			return err
		}
	}

	if err := ctrl.RequestSubmit(); err != nil {
		return err
	}

	if !c.Bool("yes") {
		ctrl.AbortSubmit()
		fmt.Println("dry run, nothing submitted; re-run with --yes to confirm")
		printJSON(form.Snapshot())
		return nil
	}

	res, err := ctrl.ConfirmSubmit(c.Context)
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Printf("survey created (id %d)\n", res.Record.ID)
	} else {
		fmt.Printf("survey updated (id %d)\n", res.Record.ID)
	}
	return nil
}

// parseFieldValue maps a command-line value onto the type the form field
// expects. List and structured fields take JSON, difficulties also accept a
// comma-separated shorthand.
func parseFieldValue(field, raw string) interface{} {
	switch field {
	case "jobDifficulties":
		if strings.HasPrefix(strings.TrimSpace(raw), "[") {
			var list []string
			if err := json.Unmarshal([]byte(raw), &list); err == nil {
				return list
			}
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		return out
	case "employmentRecords":
		var recs []models.EmploymentRecord
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			return recs
		}
		return raw
	case "selfEmployment":
		var se models.SelfEmployment
		if err := json.Unmarshal([]byte(raw), &se); err == nil {
			return se
		}
		return raw
	default:
		return raw
	}
}

func runExport(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctrl, form, err := newSurveyController(c, rt)
	if err != nil {
		return err
	}
	if ctrl.State() == survey.StateNoSubmission {
		return fmt.Errorf("no submission to export")
	}
	rec := form.Snapshot()

	out, err := os.Create(c.String("out"))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	exp := export.New()
	switch c.String("format") {
	case "html":
		avatarURL := ""
		if p := rt.profile.Current(); p != nil {
			resolver := avatar.NewResolver(rt.cfg.API.BaseURL, avatar.NewHTTPProber(5*time.Second))
			if url, ok := resolver.Resolve(c.Context, *p); ok {
				avatarURL = url
			}
		}
		if err := exp.WriteHTML(out, rec, avatarURL); err != nil {
			return err
		}
	case "csv":
		if err := exp.WriteCSV(out, rec); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}

	fmt.Println("wrote", c.String("out"))
	return nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
