// Command seed fills the database with demo applicants.
package main

import (
	"flag"
	"log"

	"lifewood/internal/catalog"
	"lifewood/internal/config"
	"lifewood/internal/database"
	"lifewood/internal/seed"
)

func main() {
	numApplicants := flag.Int("applicants", 40, "Number of applicants to create")
	shouldClean := flag.Bool("clean", false, "Delete existing applicants first")
	dryRun := flag.Bool("dry-run", false, "Build applicants without writing them")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data")
	flag.Parse()

	log.Println("🌱 Applicant Seeder")
	log.Printf("Target: %d applicants, clean=%v, dry-run=%v\n", *numApplicants, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, catalog.Default().Titles())
	if _, err := s.Run(seed.Options{
		NumApplicants: *numApplicants,
		ShouldClean:   *shouldClean,
		SeedOptions:   seed.SeedOptions{DryRun: *dryRun, RandSeed: *randSeed},
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done!")
}
