package cron

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/errors"
	"github.com/warden-one/warden/migration"
	"github.com/warden-one/warden/orm"
)

func init() {
	migration.MustRegister(1, &TaskResult{}, migration.NoModification)
}

var _ orm.CloneableData = (*TaskResult)(nil)

func (t *TaskResult) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", t.Metadata.Validate())
	if len(t.Info) > 10240 {
		errs = errors.AppendField(errs, "Info", errors.Wrap(errors.ErrInput, "too long"))
	}
	return errs
}

func (t *TaskResult) Copy() orm.CloneableData {
	return &TaskResult{
		Metadata:   t.Metadata.Copy(),
		Successful: t.Successful,
		Info:       t.Info,
		ExecTime:   t.ExecTime,
		ExecHeight: t.ExecHeight,
	}
}

// NewTaskResultBucket returns a bucket for storing task results.
func NewTaskResultBucket() orm.ModelBucket {
	b := orm.NewModelBucket("trs", &TaskResult{})
	return migration.NewModelBucket("cron", b)
}

func RegisterQuery(qr warden.QueryRouter) {
	NewTaskResultBucket().Register("crontaskresults", qr)
}
