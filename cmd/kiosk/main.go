package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/feed"
	"github.com/kiosk-news/kiosk/internal/newsapi"
	"github.com/kiosk-news/kiosk/internal/newsapi/rest"
	"github.com/kiosk-news/kiosk/internal/storage/sqlite"
	"github.com/kiosk-news/kiosk/internal/store"
	"github.com/kiosk-news/kiosk/internal/toast"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	APIURL     string        `long:"api.url" env:"API_URL" default:"http://localhost:3000" description:"news backend base url"`
	APITimeout time.Duration `long:"api.timeout" env:"API_TIMEOUT" default:"10s" description:"timeout for requests to the backend"`

	StoragePath string `long:"storage.path" env:"STORAGE_PATH" default:"kiosk.db" description:"path to the local session database"`

	LogLevel string `long:"log.level" env:"LOG_LEVEL" default:"warning" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
}{}

type app struct {
	session       *store.Session
	posts         *store.Posts
	notifications *store.Notifications
	close         func()
}

func buildApp(ctx context.Context) (*app, error) {
	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	s, err := sqlite.Open(opts.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	api := rest.New(opts.APIURL, opts.APITimeout)
	t := toast.NewWriter(func(format string, a ...interface{}) {
		fmt.Fprintf(os.Stderr, format, a...)
	})

	session := store.NewSession(api, s, t)
	if err := session.Restore(ctx); err != nil {
		logrus.WithError(err).Debug("failed to restore session")
	}

	return &app{
		session:       session,
		posts:         store.NewPosts(api, session, t),
		notifications: store.NewNotifications(api, session, t),
		close:         func() { _ = s.Close() },
	}, nil
}

type registerCmd struct {
	Name     string `long:"name" required:"true" description:"display name"`
	Email    string `long:"email" required:"true" description:"account email"`
	Password string `long:"password" required:"true" description:"account password"`
}

func (c *registerCmd) Execute(_ []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.session.Register(context.Background(), c.Name, c.Email, c.Password)
	if err != nil {
		return err
	}

	fmt.Printf("registered as %s <%s>\n", user.Name, user.Email)
	return nil
}

type loginCmd struct {
	Email    string `long:"email" required:"true" description:"account email"`
	Password string `long:"password" required:"true" description:"account password"`
}

func (c *loginCmd) Execute(_ []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	return a.session.Login(context.Background(), c.Email, c.Password)
}

type logoutCmd struct{}

func (c *logoutCmd) Execute(_ []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	a.session.Logout(context.Background())
	return nil
}

type meCmd struct{}

func (c *meCmd) Execute(_ []string) error {
	a, err := buildApp(context.Background())
	if err != nil {
		return err
	}
	defer a.close()

	user := a.session.User()
	if user == nil {
		return store.ErrUnauthorized
	}

	fmt.Printf("%s <%s> role=%s country=%s\n", user.Name, user.Email, user.Role, user.Country)
	return nil
}

type feedCmd struct {
	Category string `long:"category" default:"All News" description:"category tab, including All News and Trending"`
	Search   string `long:"search" description:"free-text query, overrides the category"`
	Today    bool   `long:"today" description:"print the News Today rail instead of the feed"`
}

func (c *feedCmd) Execute(_ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	posts := a.posts.List()
	if c.Today {
		posts = feed.NewsToday(posts, time.Now(), feed.NewsTodayLimit)
	} else {
		posts = feed.Select(posts, c.Category, c.Search)
	}

	for _, p := range posts {
		printPost(p)
	}
	return nil
}

type createCmd struct {
	Title     string `long:"title" required:"true"`
	Content   string `long:"content" required:"true"`
	Image     string `long:"image"`
	Category  string `long:"category" required:"true"`
	Country   string `long:"country"`
	Important bool   `long:"important"`
}

func (c *createCmd) Execute(_ []string) error {
	valid := false
	for _, v := range entities.Categories() {
		if string(v) == c.Category {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown category %q, expected one of %v", c.Category, entities.Categories())
	}

	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	post, err := a.posts.Create(ctx, newsapi.PostDraft{
		Title:     c.Title,
		Content:   c.Content,
		Image:     c.Image,
		Category:  entities.Category(c.Category),
		Country:   c.Country,
		Important: c.Important,
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %s\n", post.ID)
	return nil
}

type updateCmd struct {
	ID      string  `long:"id" required:"true"`
	Title   *string `long:"title"`
	Content *string `long:"content"`
}

func (c *updateCmd) Execute(_ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	_, err = a.posts.Update(ctx, c.ID, newsapi.PostPatch{
		Title:   c.Title,
		Content: c.Content,
	})
	return err
}

type deleteCmd struct {
	ID string `long:"id" required:"true"`
}

func (c *deleteCmd) Execute(_ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	return a.posts.Delete(ctx, c.ID)
}

type likeCmd struct {
	ID      string `long:"id" required:"true"`
	Dislike bool   `long:"dislike" description:"take the like back instead"`
}

func (c *likeCmd) Execute(_ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	if c.Dislike {
		return a.posts.Dislike(ctx, c.ID)
	}
	return a.posts.Like(ctx, c.ID)
}

type notificationsCmd struct {
	Read    []string `long:"read" description:"mark the given notification ids as read"`
	ReadAll bool     `long:"read-all" description:"mark every notification as read"`
	Clear   []string `long:"clear" description:"delete the given notification ids"`
}

func (c *notificationsCmd) Execute(_ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.notifications.Refresh(ctx); err != nil {
		return err
	}

	if len(c.Clear) > 0 {
		return a.notifications.Delete(ctx, c.Clear)
	}

	if c.ReadAll {
		items := a.notifications.List()
		ids := make([]string, 0, len(items))
		for _, v := range items {
			if !v.Read {
				ids = append(ids, v.ID)
			}
		}
		a.notifications.MarkAllRead(ctx, ids)
	} else if len(c.Read) > 0 {
		a.notifications.MarkAllRead(ctx, c.Read)
	}

	items := a.notifications.List()

	// newest first for presentation, the store keeps server order
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	for _, v := range items {
		marker := " "
		if !v.Read {
			marker = "*"
		}
		fmt.Printf("%s %s  %s: %s\n", marker, v.CreatedAt.Format("2006-01-02 15:04"), v.Title, v.Message)
	}

	fmt.Printf("%d unread\n", a.notifications.UnreadCount())
	return nil
}

func printPost(p *entities.Post) {
	important := ""
	if p.Important {
		important = " [!]"
	}

	fmt.Printf("%s%s  %s (%s) ♥%d\n    %s\n", p.Title, important, p.CreatedAt.Format("2006-01-02"), p.Category, p.LikeCount, p.ID)
}

func main() {
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Kiosk"
	parser.LongDescription = "Kiosk news client"

	mustAddCommand := func(name, short string, cmd interface{}) {
		if _, err := parser.AddCommand(name, short, short, cmd); err != nil {
			logrus.WithError(err).Fatal("failed to register command")
		}
	}

	mustAddCommand("register", "create an account", &registerCmd{})
	mustAddCommand("login", "log in", &loginCmd{})
	mustAddCommand("logout", "log out", &logoutCmd{})
	mustAddCommand("me", "show the current user", &meCmd{})
	mustAddCommand("feed", "browse, filter and search the feed", &feedCmd{})
	mustAddCommand("create", "create a post", &createCmd{})
	mustAddCommand("update", "update a post", &updateCmd{})
	mustAddCommand("delete", "delete a post", &deleteCmd{})
	mustAddCommand("like", "like a post", &likeCmd{})
	mustAddCommand("notifications", "list and manage notifications", &notificationsCmd{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			// flags.Default already printed it
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
