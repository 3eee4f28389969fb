package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record appends one command log row. Audit failures are logged and never
// propagated; auditing must not block the command itself.
func Record(db *gorm.DB, command, userID, guildID string, args map[string]interface{}) {
	var encoded datatypes.JSON

	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			log.Printf("Failed to encode audit args for %s: %v", command, err)
		} else {
			encoded = datatypes.JSON(raw)
		}
	}

	row := models.CommandLog{
		Command:    command,
		UserID:     userID,
		GuildID:    guildID,
		Args:       encoded,
		ExecutedAt: time.Now(),
	}

	if err := db.Create(&row).Error; err != nil {
		log.Printf("Failed to record audit log for %s: %v", command, err)
	}
}
