package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"name": "tickets",
			"type": "base",
			"fields": [
				{
					"name": "timestamp",
					"type": "date",
					"required": true
				},
				{
					"name": "name",
					"type": "text",
					"required": true,
					"max": 200
				},
				{
					"name": "email",
					"type": "email",
					"required": true
				},
				{
					"name": "payment_method",
					"type": "text",
					"required": true,
					"max": 50
				},
				{
					"name": "seller",
					"type": "text",
					"required": true,
					"max": 200
				},
				{
					"name": "ticket_number",
					"type": "text",
					"required": true,
					"max": 30
				},
				{
					"name": "payment_status",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["VERIFIED", "PENDING", "REJECTED"]
				},
				{
					"name": "verification_notes",
					"type": "text",
					"max": 1000
				},
				{
					"name": "attended",
					"type": "bool"
				},
				{
					"name": "attended_at",
					"type": "date"
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_tickets_ticket_number ON tickets (ticket_number)",
				"CREATE INDEX idx_tickets_email ON tickets (email)",
				"CREATE INDEX idx_tickets_payment_status ON tickets (payment_status)"
			]
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
