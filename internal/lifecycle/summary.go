package lifecycle

import (
	"context"
	"fmt"
	"time"

	"voicebooking/internal/events"
	"voicebooking/internal/pipeline"
	"voicebooking/internal/session"
	"voicebooking/internal/usage"
	"voicebooking/pkg/model"
)

const (
	summaryFlow = "conversation_summary"

	stepBuildPrompt           = "build_prompt"
	stepGenerateSummary       = "generate_summary"
	stepNormalizeAppointments = "normalize_appointments"
	stepEstimateCost          = "estimate_cost"
	stepPersistSummary        = "persist_summary"
	stepEmitSummary           = "emit_summary"
	stepEmitConversationEnd   = "emit_conversation_end"
)

// summaryRun is the state threaded through one run of the summary flow.
type summaryRun struct {
	trigger Trigger

	caller      session.CallerRef
	transcript  []model.TranscriptEntry
	actions     []model.ActionRecord
	preferences []string

	prompt       string
	summary      string
	appointments []events.SummaryAppointment
	costs        model.CostBreakdown
	duration     int64
	record       *model.ConversationSummary
}

func (c *Coordinator) newSummaryFlow() *pipeline.Flow[*summaryRun] {
	return pipeline.NewFlow(summaryFlow,
		pipeline.NewStep(stepBuildPrompt, c.buildPrompt),
		pipeline.NewStep(stepGenerateSummary, c.generateSummary),
		pipeline.NewStep(stepNormalizeAppointments, c.normalizeAppointments),
		pipeline.NewStep(stepEstimateCost, c.estimateCost),
		pipeline.NewStep(stepPersistSummary, c.persistSummary),
		pipeline.NewStep(stepEmitSummary, c.emitSummary),
	).Finally(
		pipeline.NewStep(stepEmitConversationEnd, c.emitConversationEnd),
	)
}

func (c *Coordinator) buildPrompt(ctx context.Context, run *summaryRun) error {
	run.caller, _ = c.sess.Caller()
	run.transcript = c.sess.Transcript()
	run.actions = c.sess.Actions()
	run.preferences = c.sess.Preferences()
	run.prompt = SummaryPrompt(c.sess.RecentTranscript(c.transcriptWindow), run.actions)
	return nil
}

// generateSummary never fails the flow: once the latch is taken there is no
// second chance, so a failed generation falls back to the template.
func (c *Coordinator) generateSummary(ctx context.Context, run *summaryRun) error {
	in := SummaryInput{
		Prompt:      run.prompt,
		Actions:     run.actions,
		Preferences: run.preferences,
		CallerName:  run.caller.Name,
	}

	text, err := c.summarizer.Summarize(ctx, in)
	if err != nil || text == "" {
		c.log.Warn("Summary generation failed, using template", "trigger", run.trigger, "error", err)
		text = TemplateSummary(in)
	}
	run.summary = text
	return nil
}

func (c *Coordinator) normalizeAppointments(ctx context.Context, run *summaryRun) error {
	run.appointments = NormalizeActions(run.actions)
	return nil
}

func (c *Coordinator) estimateCost(ctx context.Context, run *summaryRun) error {
	run.costs = usage.Estimate(c.sess.Usage())
	run.duration = max(int64(c.now().Sub(c.sess.StartedAt())/time.Second), 0)
	return nil
}

func (c *Coordinator) persistSummary(ctx context.Context, run *summaryRun) error {
	record := &model.ConversationSummary{
		CallerID:              run.caller.ID,
		SessionID:             c.sess.ID(),
		Summary:               run.summary,
		AppointmentsDiscussed: run.actions,
		PreferencesMentioned:  run.preferences,
		Transcript:            run.transcript,
		CostBreakdown:         run.costs,
		DurationSeconds:       run.duration,
		CreatedAt:             c.now().UTC(),
	}

	saved, err := c.store.SaveConversationSummary(ctx, record)
	if err != nil {
		return fmt.Errorf("persist summary: %w", err)
	}
	run.record = saved
	c.log.Info("Conversation summary persisted", "summary_id", saved.ID, "trigger", run.trigger)
	return nil
}

// emitSummary is best-effort; the remote party may already be gone.
func (c *Coordinator) emitSummary(ctx context.Context, run *summaryRun) error {
	payload := events.SummaryPayload{
		Summary:         run.summary,
		Appointments:    run.appointments,
		Preferences:     run.preferences,
		UserPhone:       run.caller.Phone,
		UserName:        run.caller.Name,
		DurationSeconds: run.duration,
		Costs:           run.costs,
	}
	if payload.Preferences == nil {
		payload.Preferences = []string{}
	}

	if err := c.sink.Emit(ctx, events.NewSummary(c.sess.ID(), payload, c.now())); err != nil {
		c.log.Warn("Could not deliver summary event", "error", err)
	}
	return nil
}

func (c *Coordinator) emitConversationEnd(ctx context.Context, run *summaryRun) error {
	if err := c.sink.Emit(ctx, events.NewConversationEnd(c.sess.ID(), c.now())); err != nil {
		c.log.Warn("Could not deliver conversation end event", "error", err)
	}
	return nil
}

// NormalizeActions reduces action records to the caller-facing shape. Modified
// entries report their new slot and a rescheduled_time display field.
func NormalizeActions(actions []model.ActionRecord) []events.SummaryAppointment {
	out := make([]events.SummaryAppointment, 0, len(actions))
	for _, a := range actions {
		item := events.SummaryAppointment{
			ID:     a.ID,
			Action: a.Action,
			Date:   a.Date,
			Time:   a.Time,
		}
		if item.Action == "" {
			item.Action = model.ActionBooked
		}
		if item.Date == "" {
			item.Date = a.NewDate
		}
		if item.Time == "" {
			item.Time = a.NewTime
		}
		if a.Action == model.ActionModified && a.NewTime != "" {
			item.RescheduledTime = a.NewDate + " at " + a.NewTime
		}
		out = append(out, item)
	}
	return out
}
