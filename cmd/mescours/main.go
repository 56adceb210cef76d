package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/mahmoudBH/gestion-etudiant/internal/client"
)

const usage = `usage: mescours [flags] <command>

commands:
  login <email>     log in and store the session token (password from -password or GESTION_PASSWORD)
  list              list the courses of your class
  download <id>     download the PDF of one course

flags:
`

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	baseURL := flag.String("api", getenv("GESTION_API_URL", "http://localhost:3000"), "API base URL")
	tokenPath := flag.String("token-file", defaultTokenPath(), "where the session token is kept")
	dir := flag.String("dir", ".", "download directory")
	password := flag.String("password", os.Getenv("GESTION_PASSWORD"), "password for login")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(*baseURL, client.NewTokenStore(*tokenPath))
	screen := client.NewScreen(c, nil, *dir, func(title, message string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	})

	args := flag.Args()
	switch args[0] {
	case "login":
		if len(args) != 2 || *password == "" {
			log.Fatalf("login needs an email argument and a password")
		}
		user, err := c.Login(ctx, args[1], *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("logged in as %s %s\n", user.FirstName, user.LastName)

	case "list":
		if err := screen.Refresh(ctx); err != nil {
			os.Exit(1)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMATIERE\tCLASSE\tADDED")
		for _, course := range screen.Courses() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", course.ID, course.Matiere, course.Classe, course.CreatedAt.Format("2006-01-02"))
		}
		w.Flush()

	case "download":
		if len(args) != 2 {
			log.Fatalf("download needs a course id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("invalid course id %q", args[1])
		}
		if err := screen.Refresh(ctx); err != nil {
			os.Exit(1)
		}
		for _, course := range screen.Courses() {
			if course.ID != id {
				continue
			}
			path, err := screen.Download(ctx, course)
			if err != nil {
				os.Exit(1)
			}
			fmt.Println(path)
			return
		}
		log.Fatalf("course %d is not in your list", id)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mescours-token"
	}
	return filepath.Join(dir, "gestion-etudiant", "token")
}
