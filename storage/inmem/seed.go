package inmemdb

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/user"
)

var (
	demoUsers = []user.User{
		{Name: "Administrator", Email: "admin@treasurehomeschool.edu.ng", Role: user.RoleAdmin},
		{Name: "John Adebayo", Email: "teacher@treasurehomeschool.edu.ng", Role: user.RoleTeacher},
		{Name: "Chioma Nwankwo", Email: "student@treasurehomeschool.edu.ng", Role: user.RoleStudent},
		{Name: "Mrs. Adunni Oladapo", Email: "parent@treasurehomeschool.edu.ng", Role: user.RoleParent},
	}

	demoAnnouncements = []announcement.Announcement{
		{
			Title: "End of Term Examination Schedule",
			Content: "The final examinations for this term will commence on January 15th, 2024. " +
				"Please ensure all students are well prepared and have reviewed their study materials. " +
				"Exam timetables will be distributed to all classes by the end of this week.",
			Audience:  announcement.AudienceList{announcement.AudienceAll},
			CreatedAt: time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			Title: "Parent-Teacher Conference",
			Content: "We invite all parents to attend the upcoming parent-teacher conference scheduled for December 20th. " +
				"This is an important opportunity to discuss your child's progress and development with their teachers.",
			Audience:  announcement.AudienceList{announcement.AudienceParents},
			CreatedAt: time.Date(2023, time.December, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			Title: "Professional Development Workshop",
			Content: "All teaching staff are required to attend the professional development workshop " +
				"on modern teaching methodologies scheduled for December 18th in the main hall.",
			Audience:  announcement.AudienceList{announcement.AudienceStaff},
			CreatedAt: time.Date(2023, time.December, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	unsplash        = "https://images.unsplash.com/"
	unsplashOptions = "?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600"

	demoGalleryItems = []gallery.Item{
		{
			Title:       "Science Laboratory",
			Description: "Students conducting experiments in our modern science laboratory",
			FileURL:     unsplash + "photo-1532094349884-543bc11b234d" + unsplashOptions,
		},
		{
			Title:       "Sports Field",
			Description: "Students enjoying physical activities on our sports field",
			FileURL:     unsplash + "photo-1551698618-1dfe5d97d256" + unsplashOptions,
		},
		{
			Title:       "Library",
			Description: "Students studying in our modern library facility",
			FileURL:     unsplash + "photo-1481627834876-b7833e8f5570" + unsplashOptions,
		},
		{
			Title:       "Art Class",
			Description: "Students expressing creativity in our art classroom",
			FileURL:     unsplash + "photo-1513475382585-d06e58bcb0e0" + unsplashOptions,
		},
		{
			Title:       "Cafeteria",
			Description: "Students enjoying meals in our school cafeteria",
			FileURL:     unsplash + "photo-1577563908411-5077b6dc7624" + unsplashOptions,
		},
		{
			Title:       "Graduation Ceremony",
			Description: "Celebrating our students' achievements at graduation",
			FileURL:     unsplash + "photo-1523050854058-8df90110c9f1" + unsplashOptions,
		},
	}
)

// Seed loads the demo accounts, announcements and gallery.
// Every demo account logs in with demoPassword.
func Seed(ctx context.Context, db *DB, demoPassword string) error {
	usrRepo := NewUserRepository(db)
	annRepo := NewAnnouncementRepository(db)
	galRepo := NewGalleryRepository(db)

	now := core.NowFunc()
	var adminID string
	for _, usr := range demoUsers {
		usr.CreatedAt, usr.UpdatedAt = now, now
		if err := usr.SetPassword(demoPassword); err != nil {
			return errors.Wrap(err, "setting demo password")
		}
		created, err := usrRepo.CreateUser(ctx, usr)
		if err != nil {
			return errors.Wrapf(err, "seeding user %s", usr.Email)
		}
		if created.Role == user.RoleAdmin {
			adminID = created.ID
		}
	}

	for _, a := range demoAnnouncements {
		a.CreatedBy = adminID
		a.UpdatedAt = a.CreatedAt
		if _, err := annRepo.CreateAnnouncement(ctx, a); err != nil {
			return errors.Wrapf(err, "seeding announcement %q", a.Title)
		}
	}

	for _, item := range demoGalleryItems {
		item.UploadedBy = adminID
		item.UploadedAt = now
		if _, err := galRepo.CreateItem(ctx, item); err != nil {
			return errors.Wrapf(err, "seeding gallery item %q", item.Title)
		}
	}
	return nil
}
