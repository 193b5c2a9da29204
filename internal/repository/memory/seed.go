package memory

import (
	"context"

	"carenow-backend/internal/models"
)

// DemoServices is the catalog loaded by Seed.
var DemoServices = []models.Service{
	{ID: "elder_care_1", Name: "Elder Companion", Category: models.CategoryElderCare, BasePrice: 100000, DurationEstimate: 2, IsActive: true,
		Description: "Daily companionship, medication reminders and light assistance."},
	{ID: "child_care_1", Name: "Babysitting", Category: models.CategoryChildCare, BasePrice: 75000, DurationEstimate: 3, IsActive: true,
		Description: "Supervision and play for children aged 1 to 10."},
	{ID: "pet_care_1", Name: "Pet Sitting", Category: models.CategoryPetCare, BasePrice: 50000, DurationEstimate: 1, IsActive: true,
		Description: "Feeding, walking and company for your pets."},
	{ID: "housekeeping_1", Name: "Home Cleaning", Category: models.CategoryHousekeeping, BasePrice: 60000, DurationEstimate: 2, IsActive: true,
		Description: "General cleaning of living areas, kitchen and bathroom."},
}

// Seed fills an empty store with the demo catalog and two verified partners
// around central Jakarta.
func (s *Store) Seed(ctx context.Context) error {
	repos := s.Repositories()
	for _, svc := range DemoServices {
		svc := svc
		if err := repos.Services.Create(ctx, &svc); err != nil {
			return err
		}
	}

	partners := []struct {
		user    models.User
		partner models.Partner
	}{
		{
			user: models.User{RoleID: models.RolePartner, FullName: "Siti Rahma", Email: "siti@carenow.local", IsVerified: true},
			partner: models.Partner{Name: "Siti Rahma", Bio: "Certified caregiver, 6 years with elderly clients.",
				HourlyPrice: 100000, ServiceTags: []string{"elder_care_1", "housekeeping_1"},
				Lat: -6.2088, Lng: 106.8456, IsVerified: true, IsAvailable: true},
		},
		{
			user: models.User{RoleID: models.RolePartner, FullName: "Budi Santoso", Email: "budi@carenow.local", IsVerified: true},
			partner: models.Partner{Name: "Budi Santoso", Bio: "Dog walker and pet sitter.",
				HourlyPrice: 50000, ServiceTags: []string{"pet_care_1", "child_care_1"},
				Lat: -6.1751, Lng: 106.8650, IsVerified: true, IsAvailable: true},
		},
	}
	for _, p := range partners {
		p := p
		if err := repos.Users.Create(ctx, &p.user); err != nil {
			return err
		}
		p.partner.UserID = p.user.ID
		if err := repos.Partners.Create(ctx, &p.partner); err != nil {
			return err
		}
	}
	return nil
}
