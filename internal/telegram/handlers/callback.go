package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/pkg/formatter"
	"github.com/navikit/navigator-backend/internal/pkg/logger"
	"github.com/navikit/navigator-backend/internal/telegram/keyboard"
	"github.com/navikit/navigator-backend/internal/telegram/render"
	"go.uber.org/zap"
)

// CallbackHandler routes all inline keyboard presses.
type CallbackHandler struct {
	BaseHandler
	quizUC    QuizUsecase
	flow      *Flow
	formatter *formatter.Factory
}

func NewCallbackHandler(
	quizUC QuizUsecase,
	flow *Flow,
	sender *MessageSender,
	formatterFactory *formatter.Factory,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: sender,
		},
		quizUC:    quizUC,
		flow:      flow,
		formatter: formatterFactory,
	}
}

// Handle dispatches a callback press by its action prefix.
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctx = logger.AddFields(ctx,
		zap.String("callback_action", data.Action),
		zap.String("callback_value", data.Value),
	)

	switch data.Action {
	case "act":
		return h.handleAction(ctx, msg, data.Value)
	case "opt":
		return h.handleChoice(ctx, msg, data.Value)
	case "sel":
		return h.handleToggle(ctx, msg, data.Value)
	case "sli":
		return h.handleSlider(ctx, msg, data.Value)
	case "rat":
		return h.handleRating(ctx, msg, data.Value)
	case "alloc":
		return h.handleAllocation(ctx, msg, data.Value)
	case "res":
		return h.handleBrowse(ctx, msg, data.Value)
	case "dl":
		return h.handleDownload(ctx, msg, data.Value)
	case "noop":
		return nil
	default:
		ctxzap.Warn(ctx, "unknown callback action")
		return nil
	}
}

func (h *CallbackHandler) handleAction(ctx context.Context, msg *Message, value string) error {
	switch value {
	case keyboard.ActionStart:
		return h.handleStart(ctx, msg)

	case keyboard.ActionBack:
		view, err := h.quizUC.Back(ctx, msg.UserID)
		if err != nil {
			h.flow.HandleFailure(ctx, msg.ChatID, err)
			return nil
		}
		h.flow.SendQuestion(ctx, msg.ChatID, view)
		return nil

	case keyboard.ActionSubmit:
		result, err := h.quizUC.SubmitPending(ctx, msg.UserID)
		if err != nil {
			h.flow.HandleFailure(ctx, msg.ChatID, err)
			return nil
		}
		h.flow.AfterStep(ctx, msg.ChatID, msg.UserID, result)
		return nil

	case keyboard.ActionGenerate:
		h.flow.RunGeneration(ctx, msg.ChatID, msg.UserID)
		return nil

	case keyboard.ActionRegen:
		h.flow.RunRegeneration(ctx, msg.ChatID, msg.UserID)
		return nil

	case keyboard.ActionPlan:
		h.flow.RunPlan(ctx, msg.ChatID, msg.UserID)
		return nil

	case keyboard.ActionAnalysis:
		h.flow.RunAnalysis(ctx, msg.ChatID, msg.UserID)
		return nil

	case keyboard.ActionResults:
		h.flow.ShowCurrentSuggestion(ctx, msg.ChatID, msg.UserID)
		return nil

	case keyboard.ActionRestart:
		markup := h.flow.keyboard.ConfirmRestartKeyboard()
		h.sendMessage(msg.ChatID, render.MsgRestartConfirm, markup)
		return nil

	case keyboard.ActionRestartYes:
		view, err := h.quizUC.Restart(ctx, msg.UserID, msg.ChatID)
		if err != nil {
			h.flow.HandleFailure(ctx, msg.ChatID, err)
			return nil
		}
		h.sendMessage(msg.ChatID, render.MsgRestarted, nil)
		h.flow.SendQuestion(ctx, msg.ChatID, view)
		return nil

	case keyboard.ActionCancel:
		h.sendMessage(msg.ChatID, render.MsgRestartCancelled, nil)
		return nil

	default:
		ctxzap.Warn(ctx, "unknown action value")
		return nil
	}
}

func (h *CallbackHandler) handleStart(ctx context.Context, msg *Message) error {
	view, err := h.quizUC.Begin(ctx, msg.UserID, msg.ChatID)
	if err != nil {
		if errors.Is(err, entity.ErrSessionCompleted) {
			h.sendMessage(msg.ChatID, render.MsgAlreadyDone, nil)
			h.flow.ShowCurrentSuggestion(ctx, msg.ChatID, msg.UserID)
			return nil
		}
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	h.flow.SendQuestion(ctx, msg.ChatID, view)
	return nil
}

func (h *CallbackHandler) handleChoice(ctx context.Context, msg *Message, value string) error {
	result, err := h.quizUC.SelectChoice(ctx, msg.UserID, value)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.AfterStep(ctx, msg.ChatID, msg.UserID, result)
	return nil
}

func (h *CallbackHandler) handleToggle(ctx context.Context, msg *Message, value string) error {
	view, err := h.quizUC.ToggleMulti(ctx, msg.UserID, value)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.EditQuestion(ctx, msg.ChatID, msg.MessageID, view)
	return nil
}

func (h *CallbackHandler) handleSlider(ctx context.Context, msg *Message, value string) error {
	delta := 1
	if value == "dec" {
		delta = -1
	}

	view, err := h.quizUC.AdjustSlider(ctx, msg.UserID, delta)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.EditQuestion(ctx, msg.ChatID, msg.MessageID, view)
	return nil
}

func (h *CallbackHandler) handleRating(ctx context.Context, msg *Message, value string) error {
	name, delta, err := splitAdjustment(value)
	if err != nil {
		return err
	}

	view, err := h.quizUC.AdjustRating(ctx, msg.UserID, name, delta)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.EditQuestion(ctx, msg.ChatID, msg.MessageID, view)
	return nil
}

func (h *CallbackHandler) handleAllocation(ctx context.Context, msg *Message, value string) error {
	name, delta, err := splitAdjustment(value)
	if err != nil {
		return err
	}

	view, err := h.quizUC.AdjustAllocation(ctx, msg.UserID, name, delta)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.EditQuestion(ctx, msg.ChatID, msg.MessageID, view)
	return nil
}

func (h *CallbackHandler) handleBrowse(ctx context.Context, msg *Message, value string) error {
	delta := 1
	if value == "prev" {
		delta = -1
	}

	s, index, total, err := h.quizUC.Browse(ctx, msg.UserID, delta)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}
	h.flow.ShowSuggestion(ctx, msg.ChatID, s, index, total)
	return nil
}

func (h *CallbackHandler) handleDownload(ctx context.Context, msg *Message, value string) error {
	format, err := parseFormat(value)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	session, err := h.quizUC.Session(ctx, msg.UserID)
	if err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	s := session.SelectedSuggestion()
	if s == nil {
		h.flow.HandleFailure(ctx, msg.ChatID, entity.ErrNoResult)
		return nil
	}

	plan, ok := session.Results.Plans[s.ID]
	if !ok {
		h.flow.HandleFailure(ctx, msg.ChatID, entity.ErrNoResult)
		return nil
	}

	fm, err := h.formatter.Create(format)
	if err != nil {
		return fmt.Errorf("create formatter: %w", err)
	}

	payload, err := fm.Format(s.Name, plan)
	if err != nil {
		ctxzap.Error(ctx, "failed to format plan", zap.Error(err))
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	filename := fmt.Sprintf("business-plan-%s%s", time.Now().Format("2006-01-02"), fm.FileExtension())
	if err := h.messageSender.SendDocument(msg.ChatID, filename, payload); err != nil {
		h.flow.HandleFailure(ctx, msg.ChatID, err)
		return nil
	}

	ctxzap.Info(ctx, "plan exported",
		zap.String("format", string(format)),
		zap.String("suggestion_id", s.ID),
	)

	return nil
}

func parseFormat(value string) (entity.ResultFormat, error) {
	switch value {
	case "md":
		return entity.FormatMarkdown, nil
	case "pdf":
		return entity.FormatPDF, nil
	case "docx":
		return entity.FormatDOCX, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", value)
	}
}

// splitAdjustment parses "<name>:<delta>" callback values.
func splitAdjustment(value string) (string, int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid adjustment value: %s", value)
	}

	delta, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid adjustment delta: %s", parts[1])
	}

	return parts[0], delta, nil
}
