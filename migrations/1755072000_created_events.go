package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{
				Name:     "nama",
				Required: true,
			},
			&core.DateField{
				Name:     "tanggal",
				Required: true,
			},
			&core.TextField{
				Name:     "lokasi",
				Required: true,
			},
			&core.TextField{
				Name: "deskripsi",
			},
			&core.TextField{
				Name: "backgroundColor",
			},
			&core.FileField{
				Name:      "backgroundImage",
				MaxSelect: 1,
				MaxSize:   5242880,
				MimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
			},
			&core.TextField{
				Name:     "registrationSlug",
				Required: true,
			},
			&core.JSONField{
				Name:    "customFields",
				MaxSize: 102400,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		collection.AddIndex("idx_events_registration_slug", true, "registrationSlug", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
