package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kiosk-news/kiosk/internal/newsapi"
	"github.com/kiosk-news/kiosk/internal/newsapi/rest"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Fixture    string        `long:"fixture" env:"FIXTURE" default:"scripts/seed/posts.json" description:"path to posts fixture"`
	APIURL     string        `long:"api.url" env:"API_URL" default:"http://localhost:3000" description:"news backend base url"`
	APITimeout time.Duration `long:"api.timeout" env:"API_TIMEOUT" default:"10s" description:"timeout for requests to the backend"`
	Email      string        `long:"email" env:"SEED_EMAIL" required:"true" description:"admin account email"`
	Password   string        `long:"password" env:"SEED_PASSWORD" required:"true" description:"admin account password"`
}{}

func main() {
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "seed"
	parser.LongDescription = "Posts fixture importer"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	logrus.Info("seed started")

	b, err := os.ReadFile(opts.Fixture)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read fixture")
	}

	var drafts []newsapi.PostDraft
	if err := json.Unmarshal(b, &drafts); err != nil {
		logrus.WithError(err).Fatal("failed to unmarshal fixture")
	}

	ctx := context.Background()
	api := rest.New(opts.APIURL, opts.APITimeout)

	auth, err := api.Login(ctx, opts.Email, opts.Password)
	if err != nil {
		logrus.WithError(err).Fatal("failed to login")
	}

	for i, d := range drafts {
		post, err := api.CreatePost(ctx, auth.Token, d)
		if err != nil {
			logrus.WithError(err).WithField("index", i).Fatal("failed to create post")
		}

		logrus.WithField("id", post.ID).WithField("title", post.Title).Info("post created")
	}

	logrus.Infof("%d posts created", len(drafts))
}
