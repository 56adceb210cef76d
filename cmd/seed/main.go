package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/mahmoudBH/gestion-etudiant/internal/config"
	"github.com/mahmoudBH/gestion-etudiant/internal/crypto"
	"github.com/mahmoudBH/gestion-etudiant/internal/db"
	"github.com/mahmoudBH/gestion-etudiant/internal/model"
	"github.com/mahmoudBH/gestion-etudiant/internal/repository"
	"github.com/mahmoudBH/gestion-etudiant/internal/storage"
)

var (
	classes  = []string{"5A", "5B", "5C"}
	subjects = []string{"Math", "Physique", "Chimie", "Informatique", "Anglais"}
)

func main() {
	users := flag.Int("users", 20, "number of demo students")
	password := flag.String("password", "password", "password given to every demo student")
	seed := flag.Int64("seed", 0, "random seed, 0 for a random run")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()
	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("db migration failed: %v", err)
	}
	store := repository.NewStore(pool)

	uploads := storage.NewUploads(cfg.UploadDir)
	if err := uploads.Ensure(); err != nil {
		log.Fatalf("upload dir init failed: %v", err)
	}

	// One hash for every demo account keeps seeding fast.
	hash, err := crypto.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	for i := 0; i < *users; i++ {
		first, last := gofakeit.FirstName(), gofakeit.LastName()
		email := strings.ToLower(fmt.Sprintf("%s.%s.%d@%s", first, last, gofakeit.Number(1000, 9999), gofakeit.DomainName()))
		userID, err := store.CreateUser(ctx, model.User{
			FirstName:    first,
			LastName:     last,
			Email:        email,
			PasswordHash: hash,
			Class:        classes[i%len(classes)],
		})
		if err != nil {
			log.Printf("skip user %s: %v", email, err)
			continue
		}
		for _, subject := range subjects {
			_, err := store.CreateNote(ctx, model.Note{
				UserID:      userID,
				Matiere:     subject,
				Note:        float64(gofakeit.Number(0, 40)) / 2,
				Coefficient: float64(gofakeit.Number(1, 4)),
			})
			if err != nil {
				log.Fatalf("create note: %v", err)
			}
		}
		if i < 3 {
			log.Printf("demo login: %s / %s (%s)", email, *password, classes[i%len(classes)])
		}
	}

	for _, class := range classes {
		for _, subject := range subjects[:2] {
			pdf := fmt.Sprintf("%%PDF-1.4\n%% %s %s: %s\n%%%%EOF\n", subject, class, gofakeit.Sentence(8))
			name, err := uploads.Save(strings.NewReader(pdf), subject+".pdf")
			if err != nil {
				log.Fatalf("save course file: %v", err)
			}
			if _, err := store.CreateCourse(ctx, model.Course{Matiere: subject, Classe: class, PDFPath: name}); err != nil {
				_ = uploads.Remove(name)
				log.Fatalf("create course: %v", err)
			}
		}
	}

	for i := 0; i < 3; i++ {
		err := store.CreateContact(ctx, model.Contact{
			Name:         gofakeit.Name(),
			Email:        gofakeit.Email(),
			MobileNumber: gofakeit.Phone(),
		})
		if err != nil {
			log.Fatalf("create contact: %v", err)
		}
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		log.Fatalf("count users: %v", err)
	}
	log.Printf("seed done: %d users in store", count)
}
