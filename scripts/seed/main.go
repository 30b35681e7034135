// Command seed populates a file-backed record store with a demo roster so the
// API can be exercised locally without a database. Running it twice is safe;
// records are keyed by fixed IDs and simply replaced.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linguaops/classtrack-api/internal/models"
	"github.com/linguaops/classtrack-api/internal/repository"
	"github.com/linguaops/classtrack-api/pkg/recordstore"
)

func main() {
	var (
		dataDir       string
		namespace     string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&dataDir, "data-dir", "./data", "Record store base directory")
	flag.StringVar(&namespace, "namespace", "classtrack", "Record store namespace")
	flag.StringVar(&adminEmail, "admin-email", "admin@classtrack.local", "Seed admin email")
	flag.StringVar(&adminPassword, "admin-password", "changeme-now", "Seed admin password")
	flag.Parse()

	backend, err := recordstore.NewFileBackend(dataDir)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	store := recordstore.New(backend, namespace, nil)
	ctx := context.Background()

	if err := seedAdmin(ctx, store, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	classes, students, sessions, err := seedRoster(ctx, store)
	if err != nil {
		log.Fatalf("failed to seed roster: %v", err)
	}

	fmt.Printf("Seeded %d classes, %d students, %d sessions into %s\n", classes, students, sessions, dataDir)
	fmt.Printf("Admin login: %s\n", adminEmail)
}

func seedAdmin(ctx context.Context, store *recordstore.Store, email, password string) error {
	users := repository.NewUserRepository(store)
	if existing := users.FindByEmail(ctx, email); existing != nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = users.Save(ctx, models.User{
		ID:           "seed-admin",
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Seed Administrator",
		Role:         models.RoleAdmin,
		Active:       true,
	})
	return err
}

func seedRoster(ctx context.Context, store *recordstore.Store) (int, int, int, error) {
	classRepo := repository.NewClassRepository(store)
	studentRepo := repository.NewStudentRepository(store)
	sessionRepo := repository.NewSessionRepository(store)

	classes := []models.Class{
		{ID: "seed-class-en-a", Name: "English A2 Evening", Language: "English", TeacherID: "seed-admin", Schedule: "Mon/Wed 18:00", Active: true},
		{ID: "seed-class-de-b", Name: "German B1 Morning", Language: "German", TeacherID: "seed-admin", Schedule: "Tue/Thu 09:00", Active: true},
	}
	for _, class := range classes {
		if _, err := classRepo.Save(ctx, class); err != nil {
			return 0, 0, 0, err
		}
	}

	students := []models.Student{
		{ID: "seed-stu-1", FullName: "Aiko Tanaka", ClassID: "seed-class-en-a", LanguageLevel: "A2", GuardianName: "Yumi Tanaka", GuardianPhone: "+81-90-0000-0001", PhotoConsent: true, Active: true},
		{ID: "seed-stu-2", FullName: "Mateo Rossi", ClassID: "seed-class-en-a", LanguageLevel: "A2", GuardianName: "Carla Rossi", GuardianPhone: "+39-333-000-0002", PhotoConsent: false, Active: true},
		{ID: "seed-stu-3", FullName: "Lena Novak", ClassID: "seed-class-de-b", LanguageLevel: "B1", GuardianName: "Petr Novak", GuardianPhone: "+420-600-000-003", PhotoConsent: true, Active: true},
	}
	for _, student := range students {
		if _, err := studentRepo.Save(ctx, student); err != nil {
			return 0, 0, 0, err
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	sessions := []models.Session{
		{ID: "seed-sess-1", ClassID: "seed-class-en-a", Date: today, Topic: "Past simple review", Status: models.SessionScheduled},
		{ID: "seed-sess-2", ClassID: "seed-class-en-a", Date: today.AddDate(0, 0, 2), Topic: "Listening practice", Status: models.SessionScheduled},
		{ID: "seed-sess-3", ClassID: "seed-class-de-b", Date: today.AddDate(0, 0, 1), Topic: "Modalverben", Status: models.SessionScheduled},
	}
	for _, session := range sessions {
		if _, err := sessionRepo.Save(ctx, session); err != nil {
			return 0, 0, 0, err
		}
	}

	return len(classes), len(students), len(sessions), nil
}
