package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestStartAPISpan(t *testing.T) {
	ctx, span := StartAPISpan(context.Background(), OperationListParticipants, MeetingIDAttr(42))
	defer span.End()

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil)
	SetSpanSuccess(span)
}

func TestStartToolSpan(t *testing.T) {
	_, span := StartToolSpan(context.Background(), "zoom_meeting_summary")
	span.End()
}

func TestMeetingIDAttr(t *testing.T) {
	attr := MeetingIDAttr(85746065432)
	if string(attr.Key) != SpanAttrMeetingID {
		t.Errorf("expected key %q, got %q", SpanAttrMeetingID, attr.Key)
	}
	if attr.Value.AsString() != "85746065432" {
		t.Errorf("expected value 85746065432, got %q", attr.Value.AsString())
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
