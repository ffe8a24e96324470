// Package audit provides security audit logging for SIEM consumption.
// Sign-ins and catalog writes are logged as structured events under the
// "security_audit" logger name so they can be filtered apart from request logs.
package audit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ekaya-inc/ekaya-enrich/pkg/auth"
	"github.com/ekaya-inc/ekaya-enrich/pkg/models"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	EventLoginSucceeded      SecurityEventType = "login_succeeded"
	EventLoginFailed         SecurityEventType = "login_failed"
	EventLogout              SecurityEventType = "logout"
	EventTableCommentUpdate  SecurityEventType = "table_comment_update"
	EventColumnCommentUpdate SecurityEventType = "column_comment_update"
	// EventIdentifierRejected is logged when a catalog, schema, table or column
	// name fails validation, including libinjection matches.
	EventIdentifierRejected SecurityEventType = "identifier_rejected"
)

// Severity levels carried on every event.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	EventID   uuid.UUID         `json:"event_id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	Username  string            `json:"username,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Table     string            `json:"table,omitempty"`
	Details   any               `json:"details,omitempty"`
	Severity  string            `json:"severity"`
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    time.Now,
	}
}

// LogLogin records a sign-in attempt. A nil err means the credentials were accepted.
func (a *SecurityAuditor) LogLogin(username, clientIP string, err error) {
	if err == nil {
		a.emit(zap.InfoLevel, "Login succeeded", SecurityEvent{
			EventType: EventLoginSucceeded,
			Username:  username,
			ClientIP:  clientIP,
			Severity:  SeverityInfo,
		})
		return
	}

	a.emit(zap.WarnLevel, "Login failed", SecurityEvent{
		EventType: EventLoginFailed,
		Username:  username,
		ClientIP:  clientIP,
		Details:   map[string]string{"error": err.Error()},
		Severity:  SeverityWarning,
	})
}

// LogLogout records the end of a session. username is empty when the
// request carried no valid session.
func (a *SecurityAuditor) LogLogout(username, clientIP string) {
	a.emit(zap.InfoLevel, "Logout", SecurityEvent{
		EventType: EventLogout,
		Username:  username,
		ClientIP:  clientIP,
		Severity:  SeverityInfo,
	})
}

// LogTableCommentUpdate records an approved table description.
func (a *SecurityAuditor) LogTableCommentUpdate(ctx context.Context, ref models.TableRef, description, clientIP string) {
	a.emit(zap.InfoLevel, "Table description updated", SecurityEvent{
		EventType: EventTableCommentUpdate,
		Username:  usernameFromContext(ctx),
		ClientIP:  clientIP,
		Table:     ref.FullName(),
		Details:   map[string]int{"description_length": len(description)},
		Severity:  SeverityInfo,
	})
}

// LogColumnCommentUpdate records approved column descriptions. Only column
// names are logged, sorted for stable output.
func (a *SecurityAuditor) LogColumnCommentUpdate(ctx context.Context, ref models.TableRef, descriptions map[string]string, clientIP string) {
	columns := make([]string, 0, len(descriptions))
	for name := range descriptions {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	a.emit(zap.InfoLevel, "Column descriptions updated", SecurityEvent{
		EventType: EventColumnCommentUpdate,
		Username:  usernameFromContext(ctx),
		ClientIP:  clientIP,
		Table:     ref.FullName(),
		Details:   map[string][]string{"columns": columns},
		Severity:  SeverityInfo,
	})
}

// LogIdentifierRejected records a request whose object names failed validation.
// Logged at ERROR level with "critical" severity since a valid client never sends one.
func (a *SecurityAuditor) LogIdentifierRejected(ctx context.Context, ref models.TableRef, reason, clientIP string) {
	a.emit(zap.ErrorLevel, "Identifier rejected", SecurityEvent{
		EventType: EventIdentifierRejected,
		Username:  usernameFromContext(ctx),
		ClientIP:  clientIP,
		Table:     ref.FullName(),
		Details:   map[string]string{"reason": reason},
		Severity:  SeverityCritical,
	})
}

func (a *SecurityAuditor) emit(level zapcore.Level, msg string, event SecurityEvent) {
	event.EventID = uuid.New()
	event.Timestamp = a.now().UTC()

	// Marshaling these known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	a.logger.Log(level, msg,
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("username", event.Username),
		zap.String("client_ip", event.ClientIP),
		zap.String("table", event.Table),
		zap.String("severity", event.Severity),
	)
}

func usernameFromContext(ctx context.Context) string {
	user, err := auth.RequireUser(ctx)
	if err != nil {
		return ""
	}
	return user.Username
}

// ClientIP returns the originating address of r: the first X-Forwarded-For
// entry when present, otherwise the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
