package middleware

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/r56149203/EduSphere/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// form fields never copied into the audit trail
var auditRedacted = map[string]bool{
	"password":         true,
	"confirm_password": true,
	"current_password": true,
	"new_password":     true,
	"csrf_token":       true,
	"mindmap_data":     true,
}

// AuditLogger records admin write actions in admin_audit_logs
type AuditLogger struct {
	db *gorm.DB
	wg sync.WaitGroup
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

// Wait blocks until every pending entry is written
func (a *AuditLogger) Wait() {
	a.wg.Wait()
}

// AdminAuditLog creates an audit log entry for admin actions. The target id is
// read from the "id" or "user_id" query/form value; resource selects which
// table the previous state is loaded from.
func (a *AuditLogger) AdminAuditLog(action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			return c.Next() // Continue without logging if user not found
		}

		resourceID := targetID(c)

		var oldValue interface{}
		if resourceID > 0 {
			switch resource {
			case "users":
				var user model.User
				if err := a.db.First(&user, resourceID).Error; err == nil {
					oldValue = map[string]interface{}{"email": user.Email, "role": user.Role, "full_name": user.FullName}
				}
			case "resources":
				var res model.Resource
				if err := a.db.First(&res, resourceID).Error; err == nil {
					oldValue = map[string]interface{}{"type": res.Type, "title": res.Title, "chapter_id": res.ChapterID}
				}
			}
		}
		newValue := formValues(c)

		// Execute the actual handler
		err := c.Next()

		// fiber reuses the context after the handler returns, so copy everything first
		entry := model.AdminAuditLog{
			AdminID:     session.UserID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    toJSON(oldValue),
			NewValue:    toJSON(newValue),
			IPAddress:   c.IP(),
			UserAgent:   string([]byte(c.Get(fiber.HeaderUserAgent))),
			Description: c.Method() + " " + string([]byte(c.OriginalURL())),
			StatusCode:  c.Response().StatusCode(),
		}

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.db.Create(&entry).Error; err != nil {
				log.Errorf("audit: failed to record %s: %v", action, err)
			}
		}()

		return err
	}
}

func targetID(c *fiber.Ctx) uint {
	for _, key := range []string{"id", "user_id", "delete"} {
		raw := c.Query(key)
		if raw == "" {
			raw = c.FormValue(key)
		}
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	return 0
}

func formValues(c *fiber.Ctx) map[string]string {
	values := map[string]string{}
	if c.Method() != fiber.MethodPost {
		return values
	}
	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			if len(v) > 0 && !auditRedacted[k] {
				values[k] = v[0]
			}
		}
		for k, files := range form.File {
			if len(files) > 0 {
				values[k] = files[0].Filename
			}
		}
		return values
	}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if k := string(key); !auditRedacted[k] {
			values[k] = string(value)
		}
	})
	return values
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
