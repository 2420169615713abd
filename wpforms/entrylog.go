package wpforms

import (
	"encoding/json"
	"strings"

	"github.com/sanzeeb3/mailercloud-go/logger"
)

// LogMeta tags an entry log record.
type LogMeta struct {
	Types  []string `json:"type"`
	Parent int64    `json:"parent,omitempty"`
	FormID string   `json:"form_id,omitempty"`
}

// EntryLogger is the host's form log (wpforms_log): records shown to the
// site admin next to entries, separate from the library logger.
type EntryLogger interface {
	Log(title string, context any, meta LogMeta)
}

type EntryLoggerFunc func(title string, context any, meta LogMeta)

func (f EntryLoggerFunc) Log(title string, context any, meta LogMeta) {
	f(title, context, meta)
}

type entryLog struct {
	logger logger.Logger
}

// NewEntryLog writes each record as one Info line on l.
func NewEntryLog(l logger.Logger) EntryLogger {
	if l == nil {
		l = logger.Noop{}
	}
	return &entryLog{logger: l}
}

func (e *entryLog) Log(title string, context any, meta LogMeta) {
	body, err := json.Marshal(context)
	if err != nil {
		body = []byte(`"<unencodable>"`)
	}
	e.logger.Infof(
		"entry log: %s [%s] parent=%d form=%s context=%s",
		title, strings.Join(meta.Types, ","), meta.Parent, meta.FormID, body,
	)
}
