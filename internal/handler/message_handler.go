package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/service"
)

// Message types understood by the extension bridge
const (
	MsgSubmissionAccepted  = "SUBMISSION_ACCEPTED"
	MsgGetReviewQueue      = "GET_REVIEW_QUEUE"
	MsgGetAllProblems      = "GET_ALL_PROBLEMS"
	MsgUpdateNote          = "UPDATE_NOTE"
	MsgDeleteProblem       = "DELETE_PROBLEM"
	MsgResetProblem        = "RESET_PROBLEM"
	MsgGetSettings         = "GET_SETTINGS"
	MsgSaveSettings        = "SAVE_SETTINGS"
	MsgGetActivityLog      = "GET_ACTIVITY_LOG"
	MsgGetStagesInfo       = "GET_STAGES_INFO"
	MsgGetMasteredProblems = "GET_MASTERED_PROBLEMS"
	MsgGetRecentActivity   = "GET_RECENT_ACTIVITY"
	MsgExportData          = "EXPORT_DATA"
	MsgImportData          = "IMPORT_DATA"
	MsgAddProblem          = "ADD_PROBLEM"
	MsgGetStats            = "GET_STATS"
	MsgClearAllData        = "CLEAR_ALL_DATA"
)

// Message is one request from the extension bridge
type Message struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// MessageHandler answers extension messages. Every answer is HTTP 200 with
// the outcome in the Result envelope, like a runtime message reply.
type MessageHandler struct {
	reviewService *service.ReviewService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(reviewService *service.ReviewService) *MessageHandler {
	return &MessageHandler{reviewService: reviewService}
}

// Handle dispatches a message by type
// POST /api/messages
func (h *MessageHandler) Handle(c *gin.Context) {
	var msg Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, domain.Result{Success: false, Message: "invalid message: " + err.Error()})
		return
	}

	result, err := h.dispatch(c.Request.Context(), &msg)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusOK, failure(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MessageHandler) dispatch(ctx context.Context, msg *Message) (domain.Result, error) {
	svc := h.reviewService

	switch msg.Type {
	case MsgSubmissionAccepted:
		var event domain.SubmissionEvent
		if err := decode(msg.Data, &event); err != nil {
			return domain.Result{}, err
		}
		res, err := svc.IngestAcceptedSubmission(ctx, &event)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{Success: true, Message: res.Message}, nil

	case MsgGetReviewQueue:
		return dataResult(svc.GetReviewQueue(ctx))

	case MsgGetAllProblems:
		return dataResult(svc.GetAllProblems(ctx))

	case MsgUpdateNote:
		var req domain.UpdateNoteRequest
		if err := decode(msg.Data, &req); err != nil {
			return domain.Result{}, err
		}
		return ackResult(svc.UpdateNote(ctx, &req))

	case MsgDeleteProblem:
		var req domain.SlugRequest
		if err := decode(msg.Data, &req); err != nil {
			return domain.Result{}, err
		}
		return ackResult(svc.DeleteProblem(ctx, req.Slug))

	case MsgResetProblem:
		var req domain.SlugRequest
		if err := decode(msg.Data, &req); err != nil {
			return domain.Result{}, err
		}
		_, err := svc.ResetProblem(ctx, req.Slug)
		return ackResult(err)

	case MsgGetSettings:
		return dataResult(svc.GetSettings(ctx))

	case MsgSaveSettings:
		var settings domain.Settings
		if err := decode(msg.Data, &settings); err != nil {
			return domain.Result{}, err
		}
		_, err := svc.SaveSettings(ctx, &settings)
		return ackResult(err)

	case MsgGetActivityLog:
		return dataResult(svc.GetActivityLog(ctx))

	case MsgGetStagesInfo:
		return domain.Result{Success: true, Data: svc.GetStagesInfo()}, nil

	case MsgGetMasteredProblems:
		return dataResult(svc.GetMasteredProblems(ctx))

	case MsgGetRecentActivity:
		return dataResult(svc.GetRecentActivity(ctx))

	case MsgExportData:
		return dataResult(svc.ExportData(ctx))

	case MsgImportData:
		var snapshot domain.Snapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			return domain.Result{}, domain.NewDomainError(domain.ErrInvalidSnapshot, "invalid snapshot: "+err.Error())
		}
		n, err := svc.ImportData(ctx, &snapshot)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{Success: true, Message: fmt.Sprintf("Imported %d problems", n)}, nil

	case MsgAddProblem:
		var req domain.AddProblemRequest
		if err := decode(msg.Data, &req); err != nil {
			return domain.Result{}, err
		}
		return dataResult(svc.AddProblem(ctx, &req))

	case MsgGetStats:
		return dataResult(svc.GetStats(ctx))

	case MsgClearAllData:
		return ackResult(svc.ClearAllData(ctx))

	default:
		return domain.Result{}, domain.InvalidInput("unknown message type: %s", msg.Type)
	}
}

// decode binds a message payload, applying binding tags
func decode(data json.RawMessage, obj interface{}) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := binding.JSON.BindBody(data, obj); err != nil {
		return domain.InvalidInput("invalid message data: %v", err)
	}
	return nil
}

func dataResult(data interface{}, err error) (domain.Result, error) {
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Success: true, Data: data}, nil
}

func ackResult(err error) (domain.Result, error) {
	if err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Success: true}, nil
}
