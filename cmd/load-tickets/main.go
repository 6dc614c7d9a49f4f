// Seeds the ticket mockup with a few contacts and cases so the
// audit endpoints have something to look at during development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/mueblesrd/support-rag/internal/config"
	"github.com/mueblesrd/support-rag/internal/db"
	"github.com/mueblesrd/support-rag/internal/tickets"
)

func main() {
	clear := flag.Bool("clear", false, "delete existing tickets and contacts first")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if *clear {
		if _, err := pool.Exec(ctx, `DELETE FROM ticket`); err != nil {
			log.Fatalf("clear tickets: %v", err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM contact`); err != nil {
			log.Fatalf("clear contacts: %v", err)
		}
		log.Println("cleared existing data")
	}

	repo := tickets.NewPgRepository(pool)

	contacts := []tickets.Contact{
		{
			FullName:    "Alex Frechette",
			AccountName: "Alex Frechette",
			Email:       "alexfrechette069@gmail.com",
			MobilePhone: "(819) 588-7553",
		},
		{
			FullName:    "Marie Tremblay",
			AccountName: "Marie Tremblay",
			Email:       "marie.t@example.com",
			Phone:       "(418) 555-1234",
			MobilePhone: "(418) 555-5678",
		},
		{
			FullName:    "Jean Dupont",
			AccountName: "Jean Dupont",
			Email:       "jdupont@example.com",
			MobilePhone: "(514) 555-9999",
		},
	}

	ids := make([]int64, len(contacts))
	for i := range contacts {
		id, err := repo.InsertContact(ctx, &contacts[i])
		if err != nil {
			log.Fatalf("insert contact %s: %v", contacts[i].FullName, err)
		}
		ids[i] = id
	}
	log.Printf("created %d contacts", len(contacts))

	now := time.Now()
	at := func(hour, min int) *time.Time {
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		return &t
	}

	seed := []tickets.Ticket{
		{
			Number:         "00430578",
			ContactID:      &ids[0],
			Owner:          "Rosalie Gouin",
			Status:         tickets.StatusNew,
			Priority:       tickets.PriorityMedium,
			Subject:        "Defective or damaged product - Case Number: 00430578",
			Description:    "Le divan fait un bruit (toc) lorsque je veux élever le fauteuil. Aussi le divan ne veut pas rester stable lorsque les pieds sont élevés.",
			OpenedAt:       at(12, 47),
			Store:          "02 - Sherbrooke",
			Classification: "Produit défectueux ou endommagé",
			SubSubject:     "Meubles",
			ContractNumber: "252228",
			ProductType:    "Meubles",
			Manufacturer:   "Autre fabricant",
			ProductCode:    "050534",
			Origin:         "Web",
			FromWeb:        true,
			Language:       "Français",
			DefectiveTotal: 1,
			DefectiveOpen:  1,
		},
		{
			Number:         "00430579",
			ContactID:      &ids[1],
			Owner:          "Rosalie Gouin",
			Status:         tickets.StatusInProgress,
			Priority:       tickets.PriorityHigh,
			Subject:        "Livraison retardée - Commande 7892",
			Description:    "La livraison prévue le 15 janvier n'a pas eu lieu.",
			OpenedAt:       at(9, 0),
			Store:          "01 - Québec",
			Classification: "Livraison",
			SubSubject:     "Retard",
			Language:       "Français",
		},
		{
			Number:         "00430580",
			ContactID:      &ids[2],
			Owner:          "Pierre Martin",
			Status:         tickets.StatusNew,
			Priority:       tickets.PriorityLow,
			Subject:        "Demande d'information sur la garantie",
			Description:    "Quelle est la durée de garantie pour un canapé acheté en 2024?",
			OpenedAt:       at(14, 0),
			Classification: "Information",
			SubSubject:     "Garantie",
			Language:       "Français",
		},
	}

	for i := range seed {
		if _, err := repo.Insert(ctx, &seed[i]); err != nil {
			log.Fatalf("insert ticket %s: %v", seed[i].Number, err)
		}
	}
	log.Printf("created %d tickets", len(seed))
}
