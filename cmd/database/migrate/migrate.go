package migration

import (
	"lifecycle/entities"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// upvoteTrigger keeps feedbacks.upvotes_count equal to the number of
// feedback_upvotes rows for that feedback.
const upvoteTrigger = `
CREATE OR REPLACE FUNCTION feedback_upvotes_count() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'INSERT' THEN
		UPDATE feedbacks SET upvotes_count = upvotes_count + 1 WHERE id = NEW.feedback_id;
		RETURN NEW;
	ELSIF TG_OP = 'DELETE' THEN
		UPDATE feedbacks SET upvotes_count = GREATEST(upvotes_count - 1, 0) WHERE id = OLD.feedback_id;
		RETURN OLD;
	END IF;
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS feedback_upvotes_count_trigger ON feedback_upvotes;
CREATE TRIGGER feedback_upvotes_count_trigger
AFTER INSERT OR DELETE ON feedback_upvotes
FOR EACH ROW EXECUTE FUNCTION feedback_upvotes_count();
`

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return errors.Wrap(err, "create uuid-ossp extension")
	}

	models := []struct {
		name  string
		model any
	}{
		{"user", &entities.User{}},
		{"profile", &entities.Profile{}},
		{"settings", &entities.Settings{}},
		{"product", &entities.Product{}},
		{"product batch", &entities.ProductBatch{}},
		{"category", &entities.Category{}},
		{"feedback", &entities.Feedback{}},
		{"feedback upvote", &entities.FeedbackUpvote{}},
		{"barcode cache", &entities.BarcodeCache{}},
		{"preference", &entities.Preference{}},
		{"scheduled notification", &entities.ScheduledNotification{}},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return errors.Wrapf(err, "migrate %s table", m.name)
		}
	}

	if err := db.Exec(upvoteTrigger).Error; err != nil {
		return errors.Wrap(err, "install feedback upvote trigger")
	}

	logrus.Info("database migration complete")
	return nil
}
