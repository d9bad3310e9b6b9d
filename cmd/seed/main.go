package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/r56149203/EduSphere/config"
	"github.com/r56149203/EduSphere/database"
)

func main() {
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file could not be loaded, using system environment variables")
	}

	env, err := config.Get()
	if err != nil && err != config.ErrMissingJWTSecret {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("EduSphere - Database Seeding")
	fmt.Println(separator)

	seeder := database.NewSeeder(store.GetDB())
	if err := seeder.SeedAll(database.AdminSeed{
		Email:    env.ADMIN_EMAIL,
		Password: env.ADMIN_PASSWORD,
		Name:     env.ADMIN_NAME,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Println(separator)
	fmt.Println("Seeding completed successfully!")
	fmt.Println(separator)
}
