package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/pkg/logger"
)

// State identifies a step of the per-turn state machine. Every turn starts at
// StateRoute and ends in a terminal state that produces exactly one reply.
type State int

const (
	StateRoute State = iota
	StateGatherRefundInfo
	StateCatalogQuery
	StateGreeting
	StateExecuteRefund
	StateExecuteLookup
	StateRequestMoreInfo
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateRoute:
		return "route"
	case StateGatherRefundInfo:
		return "gather_refund_info"
	case StateCatalogQuery:
		return "catalog_query"
	case StateGreeting:
		return "greeting"
	case StateExecuteRefund:
		return "execute_refund"
	case StateExecuteLookup:
		return "execute_lookup"
	case StateRequestMoreInfo:
		return "request_more_info"
	default:
		return "unknown"
	}
}

// FailureReason tags why a turn fell back to an apology or fallback reply.
// The user always receives a normal reply; the tag exists for callers,
// metrics and tests.
type FailureReason string

const (
	FailureNone                  FailureReason = ""
	FailureClassification        FailureReason = "classification_failed"
	FailureExtraction            FailureReason = "extraction_failed"
	FailureStorage               FailureReason = "storage_failed"
	FailureMissingRefundTarget   FailureReason = "missing_refund_target"
	FailureMissingIdentityFields FailureReason = "missing_identity_fields"
)

// Fixed replies. Validation outcomes build on these; they are normal terminal
// states, not errors.
const (
	greetingReply = "I'm your music store assistant. I can help you:\n" +
		"• Look up songs, albums, and artists\n" +
		"• Process refunds for purchases\n" +
		"What would you like to do?"

	refundApologyReply = "I'm having trouble processing your refund request. Could you please try again?"

	refundTargetReply = "To process a refund I need either your Invoice ID, or the Invoice Line IDs " +
		"of the individual tracks you'd like refunded. Could you please provide them?"

	refundStorageReply = "I couldn't process the refund right now. Please verify the details and try again."

	lookupStorageReply = "I couldn't look up your purchases right now. Please try again."

	noPurchasesReply = "No purchases found. Please check your information."

	catalogErrorReply = "I had trouble searching our music catalog. Please try again."

	catalogEmptyReply = "I couldn't find any tracks matching your query. Could you try being more specific?"
)

// Gateway is the record-store boundary the router depends on.
type Gateway interface {
	// Refund deletes the targeted invoice and/or invoice lines and returns
	// the dollar amount removed. With simulate set it computes the amount
	// without deleting anything.
	Refund(ctx context.Context, target model.RefundTarget, simulate bool) (float64, error)

	// FindPurchases returns the purchase history matching the criteria.
	FindPurchases(ctx context.Context, criteria model.LookupCriteria) ([]model.PurchaseRecord, error)

	// Catalog lookups keyed off free text; each tries exactly one match kind.
	FindTracks(ctx context.Context, query string) ([]model.CatalogRow, error)
	FindAlbums(ctx context.Context, query string) ([]model.CatalogRow, error)
	FindArtists(ctx context.Context, query string) ([]model.CatalogRow, error)
}

// Outcome is the result of one completed turn. Reply is always non-empty;
// Failure carries the tagged reason when the reply is a fallback or apology.
type Outcome struct {
	Reply        string
	Intent       model.Intent
	Terminal     State
	Failure      FailureReason
	RefundAmount *float64
}

// Router sequences one turn through classify, gather, and store branches.
// It never returns an error: every collaborator failure becomes a tagged
// Outcome with a user-facing reply, and the machine re-enters StateRoute on
// the next user message with the merged pending fields intact.
type Router struct {
	classifier Classifier
	extractor  Extractor
	gateway    Gateway
	logger     *logger.Logger
	simulate   bool
	llmTimeout time.Duration
}

// NewRouter creates a turn router. simulate disables refund deletion while
// still computing the would-be amount.
func NewRouter(
	classifier Classifier,
	extractor Extractor,
	gateway Gateway,
	log *logger.Logger,
	simulate bool,
	llmTimeout time.Duration,
) *Router {
	if llmTimeout <= 0 {
		llmTimeout = 30 * time.Second
	}
	return &Router{
		classifier: classifier,
		extractor:  extractor,
		gateway:    gateway,
		logger:     log,
		simulate:   simulate,
		llmTimeout: llmTimeout,
	}
}

// Turn processes one user message against the session state. On return the
// state history ends with an assistant message and LastReply equals
// Outcome.Reply.
func (r *Router) Turn(ctx context.Context, sessionID string, state *model.ConversationState, userText string) Outcome {
	state.AppendUser(sessionID, userText)

	outcome := r.route(ctx, state, userText)

	state.AppendAssistant(sessionID, outcome.Reply)

	r.logger.Info("turn completed",
		zap.String("session_id", sessionID),
		zap.String("intent", string(outcome.Intent)),
		zap.String("terminal_state", outcome.Terminal.String()),
		zap.String("failure", string(outcome.Failure)),
	)

	return outcome
}

func (r *Router) route(ctx context.Context, state *model.ConversationState, userText string) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, r.llmTimeout)
	intent, err := r.classifier.Classify(callCtx, userText)
	cancel()
	if err != nil {
		r.logger.Warn("intent classification failed", zap.Error(err))
		out := r.greeting()
		out.Intent = model.IntentUnknown
		out.Failure = FailureClassification
		return out
	}

	switch intent {
	case model.IntentRefund:
		out := r.gatherRefundInfo(ctx, state, userText)
		out.Intent = model.IntentRefund
		return out
	case model.IntentMusicQuery:
		out := r.catalogQuery(ctx, userText)
		out.Intent = model.IntentMusicQuery
		return out
	case model.IntentHello:
		out := r.greeting()
		out.Intent = model.IntentHello
		return out
	default:
		// Contract: any label outside the closed set is the fallback path.
		out := r.greeting()
		out.Intent = model.IntentUnknown
		return out
	}
}

func (r *Router) gatherRefundInfo(ctx context.Context, state *model.ConversationState, userText string) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, r.llmTimeout)
	extracted, err := r.extractor.Extract(callCtx, userText)
	cancel()
	if err != nil {
		r.logger.Warn("field extraction failed", zap.Error(err))
		return Outcome{
			Reply:    refundApologyReply,
			Terminal: StateGatherRefundInfo,
			Failure:  FailureExtraction,
		}
	}

	state.Pending.Merge(extracted)
	pending := &state.Pending

	switch {
	case pending.HasRefundTarget():
		return r.executeRefund(ctx, pending)
	case len(pending.MissingIdentity()) == 0:
		return r.executeLookup(ctx, pending)
	default:
		return r.requestMoreInfo(pending)
	}
}

func (r *Router) executeRefund(ctx context.Context, pending *model.PurchaseFields) Outcome {
	target := model.RefundTarget{
		InvoiceID:      pending.InvoiceID,
		InvoiceLineIDs: pending.InvoiceLineIDs,
	}
	if target.IsEmpty() {
		return Outcome{
			Reply:    refundTargetReply,
			Terminal: StateExecuteRefund,
			Failure:  FailureMissingRefundTarget,
		}
	}

	amount, err := r.gateway.Refund(ctx, target, r.simulate)
	if err != nil {
		r.logger.Error("refund failed", zap.Error(err))
		return Outcome{
			Reply:    refundStorageReply,
			Terminal: StateExecuteRefund,
			Failure:  FailureStorage,
		}
	}

	reply := fmt.Sprintf("You have been refunded a total of: $%.2f. Is there anything else I can help with?", amount)
	return Outcome{
		Reply:        reply,
		Terminal:     StateExecuteRefund,
		RefundAmount: &amount,
	}
}

func (r *Router) executeLookup(ctx context.Context, pending *model.PurchaseFields) Outcome {
	criteria := model.LookupCriteria{
		FirstName:    *pending.CustomerFirstName,
		LastName:     *pending.CustomerLastName,
		Phone:        *pending.CustomerPhone,
		TrackName:    pending.TrackName,
		AlbumTitle:   pending.AlbumTitle,
		ArtistName:   pending.ArtistName,
		PurchaseDate: pending.PurchaseDate,
	}

	records, err := r.gateway.FindPurchases(ctx, criteria)
	if err != nil {
		r.logger.Error("purchase lookup failed", zap.Error(err))
		return Outcome{
			Reply:    lookupStorageReply,
			Terminal: StateExecuteLookup,
			Failure:  FailureStorage,
		}
	}

	if len(records) == 0 {
		return Outcome{
			Reply:    noPurchasesReply,
			Terminal: StateExecuteLookup,
		}
	}

	reply := "Here are the purchases I found:\n\n" + FormatPurchases(records) +
		"\n\nWould you like a refund for any of these items? If so, please tell me the Invoice Line IDs."
	return Outcome{
		Reply:    reply,
		Terminal: StateExecuteLookup,
	}
}

func (r *Router) requestMoreInfo(pending *model.PurchaseFields) Outcome {
	missing := pending.MissingIdentity()
	reply := "To help you with a refund, I still need your " + joinMissing(missing) +
		". Alternatively, you can give me the Invoice ID or Invoice Line IDs directly."
	return Outcome{
		Reply:    reply,
		Terminal: StateRequestMoreInfo,
		Failure:  FailureMissingIdentityFields,
	}
}

func (r *Router) catalogQuery(ctx context.Context, userText string) Outcome {
	// Exactly one lookup kind is tried per turn.
	lowered := strings.ToLower(userText)
	var (
		rows []model.CatalogRow
		err  error
	)
	switch {
	case strings.Contains(lowered, "artist") || strings.Contains(lowered, "by"):
		rows, err = r.gateway.FindArtists(ctx, userText)
	case strings.Contains(lowered, "album"):
		rows, err = r.gateway.FindAlbums(ctx, userText)
	default:
		rows, err = r.gateway.FindTracks(ctx, userText)
	}
	if err != nil {
		r.logger.Error("catalog search failed", zap.Error(err))
		return Outcome{
			Reply:    catalogErrorReply,
			Terminal: StateCatalogQuery,
			Failure:  FailureStorage,
		}
	}

	if len(rows) == 0 {
		return Outcome{
			Reply:    catalogEmptyReply,
			Terminal: StateCatalogQuery,
		}
	}

	return Outcome{
		Reply:    "Here are the matching tracks:\n\n" + FormatCatalog(rows),
		Terminal: StateCatalogQuery,
	}
}

func (r *Router) greeting() Outcome {
	return Outcome{
		Reply:    greetingReply,
		Intent:   model.IntentHello,
		Terminal: StateGreeting,
	}
}

func joinMissing(missing []string) string {
	switch len(missing) {
	case 0:
		return ""
	case 1:
		return missing[0]
	case 2:
		return missing[0] + " and " + missing[1]
	default:
		return strings.Join(missing[:len(missing)-1], ", ") + ", and " + missing[len(missing)-1]
	}
}
