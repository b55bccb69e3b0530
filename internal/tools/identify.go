package tools

import (
	"context"
	"time"

	"voicebooking/internal/events"
	"voicebooking/internal/session"
	apperrors "voicebooking/pkg/errors"
	"voicebooking/pkg/sanitizer"
)

// IdentifyUser resolves or creates the caller by phone number and binds it to the session.
func (t *ToolSet) IdentifyUser(ctx context.Context, in IdentifyUserInput) (string, events.Event) {
	started := time.Now()

	if err := t.validator.Validate(in); err != nil {
		return t.report(ctx, IdentifyUser, started, outcomeInvalidInput,
			map[string]any{"phone": in.PhoneNumber},
			errorResult(InvalidPhoneSentence),
			InvalidPhoneSentence,
		)
	}

	phone := sanitizer.NormalizePhone(in.PhoneNumber)
	name := sanitizer.NormalizeName(in.Name)
	params := map[string]any{"phone": phone, "name": nullable(name)}

	caller, created, err := t.store.GetOrCreateCaller(ctx, phone, name)
	if err != nil {
		if apperrors.AsAppError(err).Code == apperrors.CodeValidation {
			t.log.Warn("Caller rejected by validation", "phone", phone, "error", err)
			return t.report(ctx, IdentifyUser, started, outcomeInvalidInput, params, errorResult(InvalidPhoneSentence), InvalidPhoneSentence)
		}
		t.log.Error("Failed to identify caller", "phone", phone, "error", err)
		return t.report(ctx, IdentifyUser, started, outcomeStoreError, params, errorResult(errStoreUnavailable), StoreFailureSentence)
	}

	ref := session.CallerRef{ID: caller.ID, Phone: phone, Name: caller.Name}
	if ref.Name == "" {
		ref.Name = name
	}
	t.sess.SetCaller(ref)

	result := map[string]any{
		"user_id": ref.ID,
		"phone":   ref.Phone,
		"name":    nullable(ref.Name),
		"is_new":  created,
	}
	return t.report(ctx, IdentifyUser, started, outcomeOK, params, result, identifiedSentence(ref.Name, ref.ID))
}
