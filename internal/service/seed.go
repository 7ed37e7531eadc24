package service

import (
	"context"
	"errors"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultCategory is a parent category with its children, seeded on first run
type DefaultCategory struct {
	ID       string
	Name     string
	Children [][2]string
}

// DefaultCategories is the household category tree seeded by the admin CLI
var DefaultCategories = []DefaultCategory{
	{"food", "Food", [][2]string{{"groceries", "Groceries"}, {"eating_out", "Eating Out"}, {"coffee", "Coffee"}, {"delivery", "Delivery"}}},
	{"transport", "Transport", [][2]string{{"fuel", "Fuel"}, {"parking", "Parking"}, {"toll", "Toll"}, {"public_transport", "Public Transport"}, {"ride_hailing", "Ride Hailing"}}},
	{"bills", "Bills", [][2]string{{"electricity", "Electricity"}, {"water", "Water"}, {"internet", "Internet"}, {"phone", "Phone"}, {"gas_lpg", "Gas LPG"}, {"subscriptions", "Subscriptions"}}},
	{"housing", "Housing", [][2]string{{"rent", "Rent"}, {"furnishing", "Furnishing"}, {"maintenance", "Maintenance"}, {"cleaning", "Cleaning"}}},
	{"shopping", "Shopping", [][2]string{{"clothing", "Clothing"}, {"electronics", "Electronics"}, {"household_items", "Household Items"}}},
	{"health", "Health", [][2]string{{"medical", "Medical"}, {"pharmacy", "Pharmacy"}, {"gym", "Gym"}}},
	{"entertainment", "Entertainment", [][2]string{{"movies", "Movies"}, {"games", "Games"}, {"hobbies", "Hobbies"}, {"outings", "Outings"}}},
	{"vehicle", "Vehicle", [][2]string{{"car_service", "Car Service"}, {"car_insurance", "Car Insurance"}, {"car_tax", "Car Tax"}}},
	{"personal", "Personal", [][2]string{{"haircut", "Haircut"}, {"skincare", "Skincare"}}},
	{"education", "Education", [][2]string{{"courses", "Courses"}, {"books", "Books"}}},
	{"gifts", "Gifts & Donations", [][2]string{{"gifts_items", "Gifts"}, {"charity", "Charity"}, {"zakat", "Zakat"}}},
	{"investment", "Investment", [][2]string{{"gold", "Gold"}, {"stock", "Stock"}, {"bond", "Bond"}, {"saving", "Saving"}}},
	{"income", "Income", [][2]string{{"salary", "Salary"}, {"freelance", "Freelance"}, {"other_income", "Other Income"}}},
}

// DefaultAccounts are the shared accounts seeded on first run
var DefaultAccounts = []domain.Account{
	{ID: "CASH", DisplayName: "Cash", Type: domain.AccountTypeCash},
}

// SeedResult counts the rows a seed run inserted
type SeedResult struct {
	Users      int
	Categories int
	Accounts   int
}

// Seed inserts the default category tree, the default shared accounts and
// the given users. Rows that already exist are left untouched, so running it
// twice is harmless.
func Seed(ctx context.Context, tx domain.Transactor, users []domain.User, currency string) (*SeedResult, error) {
	result := &SeedResult{}
	err := tx.WithinTx(ctx, func(store domain.Store) error {
		for _, u := range users {
			user := u
			created, err := createIfMissing(func() error {
				_, err := store.Users().GetByID(ctx, user.ID)
				return err
			}, func() error {
				_, err := store.Users().Create(ctx, &user)
				return err
			})
			if err != nil {
				return err
			}
			if created {
				result.Users++
			}
		}

		for _, parent := range DefaultCategories {
			categories := []*domain.Category{{ID: parent.ID, DisplayName: parent.Name, IsActive: true}}
			for _, child := range parent.Children {
				parentID := parent.ID
				categories = append(categories, &domain.Category{ID: child[0], DisplayName: child[1], ParentID: &parentID, IsActive: true})
			}
			for _, c := range categories {
				category := c
				created, err := createIfMissing(func() error {
					_, err := store.Categories().GetByID(ctx, category.ID)
					return err
				}, func() error {
					_, err := store.Categories().Create(ctx, category)
					return err
				})
				if err != nil {
					return err
				}
				if created {
					result.Categories++
				}
			}
		}

		for _, a := range DefaultAccounts {
			account := a
			account.Currency = currency
			account.IsActive = true
			created, err := createIfMissing(func() error {
				_, err := store.Accounts().GetByID(ctx, account.ID)
				return err
			}, func() error {
				_, err := store.Accounts().Create(ctx, &account)
				return err
			})
			if err != nil {
				return err
			}
			if created {
				result.Accounts++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("users", result.Users).Int("categories", result.Categories).Int("accounts", result.Accounts).Msg("Seeded defaults")
	return result, nil
}

// createIfMissing looks before it inserts; a failed insert would abort the
// surrounding store transaction.
func createIfMissing(lookup, create func() error) (bool, error) {
	err := lookup()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if err := create(); err != nil {
		return false, err
	}
	return true, nil
}
