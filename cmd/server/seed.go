package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/odin-book/backend/internal/models"
	"github.com/anonto42/odin-book/backend/internal/services"
	"github.com/anonto42/odin-book/backend/pkg/config"
	"github.com/anonto42/odin-book/backend/validators"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var seedOpts struct {
	users    int
	posts    int
	comments int
	password string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with sample users, posts and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedOpts.users, "users", 8, "number of users to create")
	seedCmd.Flags().IntVar(&seedOpts.posts, "posts", 3, "posts per user")
	seedCmd.Flags().IntVar(&seedOpts.comments, "comments", 2, "comments per post")
	seedCmd.Flags().StringVar(&seedOpts.password, "password", "Password1", "password for every seeded user")
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Linus", "Margaret", "Dennis", "Barbara", "Ken", "Radia", "Edsger"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Ritchie", "Liskov", "Thompson", "Perlman", "Dijkstra"}
	sentences  = []string{
		"Just shipped a new side project.",
		"Coffee first, code second.",
		"Does anyone have a good book recommendation?",
		"Weekend hike photos coming soon.",
		"Finally fixed that flaky test.",
		"Learning something new every day.",
		"Who else is going to the meetup?",
		"Great conversation today, thanks all.",
	}
)

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !validators.IsStrongPassword(seedOpts.password) {
		return fmt.Errorf("--password must be at least 8 letters and digits with upper, lower and a digit")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg)
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Seeding the in-memory store; the data disappears when this command exits.")
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	d := a.deps
	accounts := services.NewAccountService(d.Users, cfg.DefaultProfileImage)
	relations := services.NewRelationshipService(d.Users, nil)
	content := services.NewContentService(d.Users, d.Posts, d.Comments, nil, nil)
	likes := services.NewLikeService(d.Posts, d.Comments, nil)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := strconv.FormatInt(time.Now().Unix()%100000, 36)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Name", "Friends", "Posts", "Comments"})

	users := make([]*models.User, 0, seedOpts.users)
	for i := 0; i < seedOpts.users; i++ {
		first, last := firstNames[i%len(firstNames)], lastNames[rng.Intn(len(lastNames))]
		username := fmt.Sprintf("%s%s%02d", strings.ToLower(first), suffix, i)
		user, err := accounts.Signup(ctx, models.SignupRequest{
			Username:        username,
			FirstName:       first,
			LastName:        last,
			Email:           username + "@example.com",
			Password:        seedOpts.password,
			PasswordConfirm: seedOpts.password,
		})
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}

	// Befriend each user with the next one so every feed has someone else's posts.
	for i := 0; i+1 < len(users); i++ {
		if _, err := relations.AcceptOrToggleFriend(ctx, users[i].ID, users[i+1].ID); err != nil {
			return err
		}
	}

	postCount := make(map[int]int)
	commentCount := make(map[int]int)
	for i, user := range users {
		for p := 0; p < seedOpts.posts; p++ {
			post, err := content.CreatePost(ctx, user.ID, models.CreatePostRequest{Text: sentences[rng.Intn(len(sentences))]})
			if err != nil {
				return err
			}
			postCount[i]++
			for k := 0; k < seedOpts.comments && len(users) > 0; k++ {
				j := rng.Intn(len(users))
				if _, err := content.CreateComment(ctx, post.ID, users[j].ID, models.CreateCommentRequest{Text: sentences[rng.Intn(len(sentences))]}); err != nil {
					return err
				}
				commentCount[j]++
				if rng.Intn(2) == 0 {
					if _, err := likes.TogglePostLike(ctx, post.ID, users[j].ID); err != nil {
						return err
					}
				}
			}
		}
	}

	for i, user := range users {
		friends := 1
		if i > 0 && i+1 < len(users) {
			friends = 2
		}
		if len(users) == 1 {
			friends = 0
		}
		table.Append([]string{user.Username, user.Name(), strconv.Itoa(friends), strconv.Itoa(postCount[i]), strconv.Itoa(commentCount[i])})
	}
	table.Render()

	color.New(color.FgGreen, color.Bold).Printf("Seeded %d users with password %q\n", len(users), seedOpts.password)
	return nil
}
