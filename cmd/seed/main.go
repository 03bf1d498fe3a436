package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-VetBookingService/internal/config"
	"github.com/m04kA/SMC-VetBookingService/internal/domain"
	animalRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/animal"
	clinicRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/clinic"
	reminderRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/reminder"
	slotRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/slot"
	userRepo "github.com/m04kA/SMC-VetBookingService/internal/infra/storage/user"
	authService "github.com/m04kA/SMC-VetBookingService/internal/service/auth"
	"github.com/m04kA/SMC-VetBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VetBookingService/pkg/logger"
	"github.com/m04kA/SMC-VetBookingService/pkg/ptr"
)

const (
	clinicCount     = 3
	vetsPerClinic   = 2
	animalCount     = 3
	slotDays        = 7
	firstSlotHour   = 9
	lastSlotHour    = 17
	slotLength      = 30 * time.Minute
	defaultPassword = "password123"
)

var species = []string{"dog", "cat", "rabbit", "parrot", "ferret"}

type repositories struct {
	users     *userRepo.Repository
	clinics   *clinicRepo.Repository
	animals   *animalRepo.Repository
	slots     *slotRepo.Repository
	reminders *reminderRepo.Repository
}

func main() {
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Server.Timezone, err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	wrapped := dbmetrics.Wrap(db, nil, cfg.Metrics.ServiceName)
	repos := repositories{
		users:     userRepo.NewRepository(wrapped),
		clinics:   clinicRepo.NewRepository(wrapped),
		animals:   animalRepo.NewRepository(wrapped),
		slots:     slotRepo.NewRepository(wrapped),
		reminders: reminderRepo.NewRepository(wrapped),
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = defaultPassword
	}
	hash, err := authService.NewPasswordHasher(0).Hash(password)
	if err != nil {
		log.Fatal("Failed to hash seed password: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())
	log.Info("Seed starting")

	if _, err := seedUser(ctx, repos, hash, "admin@vet.local", domain.RoleAdmin); err != nil {
		log.Fatal("Failed to seed admin: %v", err)
	}

	if err := seedClinics(ctx, repos, hash, location, log); err != nil {
		log.Fatal("Failed to seed clinics: %v", err)
	}

	owner, err := seedUser(ctx, repos, hash, "owner@vet.local", domain.RoleOwner)
	if err != nil {
		log.Fatal("Failed to seed owner: %v", err)
	}
	if err := seedAnimals(ctx, repos, owner.ID); err != nil {
		log.Fatal("Failed to seed animals: %v", err)
	}

	if err := seedReminderRules(ctx, repos); err != nil {
		log.Fatal("Failed to seed reminder rules: %v", err)
	}

	log.Info("Seed complete, every account uses password %q", password)
}

func seedUser(ctx context.Context, repos repositories, hash, email string, role domain.Role) (*domain.User, error) {
	roles := domain.NewRoleSet(domain.RoleOwner, role)
	return repos.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		Phone:        ptr.Ptr(gofakeit.Phone()),
		PrimaryRole:  role,
		Roles:        roles,
	})
}

func seedClinics(ctx context.Context, repos repositories, hash string, location *time.Location, log *logger.Logger) error {
	today := time.Now().In(location)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, location)

	for i := 0; i < clinicCount; i++ {
		clinic, err := repos.clinics.Create(ctx, &domain.Clinic{
			Name:    gofakeit.Company() + " Vet Clinic",
			Address: gofakeit.Street(),
			City:    gofakeit.City(),
			Phone:   ptr.Ptr(gofakeit.Phone()),
			Email:   ptr.Ptr(gofakeit.Email()),
		})
		if err != nil {
			return fmt.Errorf("create clinic: %w", err)
		}

		for v := 0; v < vetsPerClinic; v++ {
			vet, err := seedUser(ctx, repos, hash, fmt.Sprintf("vet%d.%d@vet.local", i+1, v+1), domain.RoleVet)
			if err != nil {
				return fmt.Errorf("create vet: %w", err)
			}
			if err := repos.clinics.AddVet(ctx, clinic.ID, vet.ID); err != nil {
				return fmt.Errorf("attach vet: %w", err)
			}
			count, err := seedSlots(ctx, repos, clinic.ID, vet.ID, today)
			if err != nil {
				return fmt.Errorf("create slots: %w", err)
			}
			log.Info("Clinic %q: vet %s with %d slots", clinic.Name, vet.Email, count)
		}
	}
	return nil
}

func seedSlots(ctx context.Context, repos repositories, clinicID, vetID uuid.UUID, today time.Time) (int, error) {
	count := 0
	for day := 1; day <= slotDays; day++ {
		date := today.AddDate(0, 0, day)
		for start := date.Add(firstSlotHour * time.Hour); start.Before(date.Add(lastSlotHour * time.Hour)); start = start.Add(slotLength) {
			_, err := repos.slots.Create(ctx, &domain.TimeSlot{
				ClinicID:    clinicID,
				VetID:       ptr.Ptr(vetID),
				StartAt:     start.UTC(),
				EndAt:       start.Add(slotLength).UTC(),
				IsAvailable: true,
			})
			if err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func seedAnimals(ctx context.Context, repos repositories, ownerID uuid.UUID) error {
	for i := 0; i < animalCount; i++ {
		_, err := repos.animals.Create(ctx, &domain.Animal{
			OwnerID:  ownerID,
			Name:     gofakeit.PetName(),
			Species:  species[gofakeit.Number(0, len(species)-1)],
			WeightKg: ptr.Ptr(gofakeit.Float64Range(1, 40)),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedReminderRules(ctx context.Context, repos repositories) error {
	rules := []*domain.ReminderRule{
		{Name: "Day before", Scope: domain.ReminderScopeAppointment, OffsetDays: -1, SendEmail: true, SendInApp: true, IsActive: true},
		{Name: "Same day", Scope: domain.ReminderScopeAppointment, OffsetDays: 0, SendInApp: true, IsActive: true},
	}
	for _, rule := range rules {
		if _, err := repos.reminders.CreateRule(ctx, rule); err != nil {
			return err
		}
	}
	return nil
}
