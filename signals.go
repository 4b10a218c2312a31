package record

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for record events.
var (
	SignalRecordCreated = capitan.NewSignal("record.created", "Record instantiated")
	SignalFilled        = capitan.NewSignal("record.filled", "Mass assignment applied")
	SignalMerged        = capitan.NewSignal("record.merged", "Cached casts merged into raw attributes")
	SignalCastResolved  = capitan.NewSignal("record.cast.resolved", "Caster built for an attribute")
	SignalSynced        = capitan.NewSignal("record.synced", "Original attributes synchronized")
	SignalChangesSynced = capitan.NewSignal("record.changes.synced", "Dirty attributes captured as changes")
)

// Keys for typed event data.
var (
	KeyAttribute = capitan.NewStringKey("attribute")
	KeyCast      = capitan.NewStringKey("cast")
	KeyCount     = capitan.NewIntKey("count")
	KeyRejected  = capitan.NewIntKey("rejected")
	KeyCached    = capitan.NewIntKey("cached")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

func emitRecordCreated(ctx context.Context, attributes, casts int) {
	capitan.Emit(ctx, SignalRecordCreated,
		KeyCount.Field(attributes),
		KeyCached.Field(casts),
	)
}

func emitFilled(ctx context.Context, filled, rejected int, err error) {
	fields := []capitan.Field{
		KeyCount.Field(filled),
		KeyRejected.Field(rejected),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFilled, fields...)
	} else {
		capitan.Emit(ctx, SignalFilled, fields...)
	}
}

func emitMerged(ctx context.Context, cached int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyCached.Field(cached),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMerged, fields...)
	} else {
		capitan.Emit(ctx, SignalMerged, fields...)
	}
}

func emitCastResolved(ctx context.Context, key, cast string, err error) {
	fields := []capitan.Field{
		KeyAttribute.Field(key),
		KeyCast.Field(cast),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCastResolved, fields...)
	} else {
		capitan.Emit(ctx, SignalCastResolved, fields...)
	}
}

func emitSynced(ctx context.Context, count int) {
	capitan.Emit(ctx, SignalSynced, KeyCount.Field(count))
}

func emitChangesSynced(ctx context.Context, count int) {
	capitan.Emit(ctx, SignalChangesSynced, KeyCount.Field(count))
}
