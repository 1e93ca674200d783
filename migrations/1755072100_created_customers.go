package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("customers")

		collection.Fields.Add(
			&core.EmailField{
				Name:     "email",
				Required: true,
			},
			&core.TextField{
				Name:     "noHp",
				Required: true,
			},
			&core.TextField{
				Name:     "nama",
				Required: true,
			},
			&core.TextField{
				Name:     "alamat",
				Required: true,
			},
			&core.RelationField{
				Name:          "event",
				Required:      true,
				CollectionId:  events.Id,
				MaxSelect:     1,
				CascadeDelete: false,
			},
			&core.JSONField{
				Name:    "registrationData",
				MaxSize: 102400,
			},
			&core.BoolField{
				Name: "isVerified",
			},
			&core.DateField{
				Name: "verifiedAt",
			},
			&core.URLField{
				Name: "barcode",
			},
			&core.FileField{
				Name:      "barcodeFile",
				MaxSelect: 1,
				MaxSize:   1048576,
				MimeTypes: []string{"image/png"},
			},
			&core.DateField{
				Name: "deletedAt",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		collection.AddIndex("idx_customers_event", false, "event", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("customers")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
