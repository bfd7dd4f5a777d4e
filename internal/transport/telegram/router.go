package telegram

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"likesbot/internal/dispatch"
	"likesbot/internal/keystore"
	"likesbot/internal/likes"
	"likesbot/internal/notify"
	"likesbot/internal/storage"
	"likesbot/pkg/logx"
)

// Dispatcher is the send-cycle port consumed by /like and /forcesend.
type Dispatcher interface {
	Run(ctx context.Context, origin dispatch.Origin) (dispatch.Summary, error)
	SendOne(ctx context.Context, telegramID int64, playerID string) (likes.Outcome, error)
}

// Trigger reports the next scheduled cycle, for /status.
type Trigger interface {
	Next() time.Time
}

type RouterConfig struct {
	AdminID int64
}

// Router registers the bot command surface and routes updates to the
// registry, the keystore and the dispatcher.
type Router struct {
	adapter  *Adapter
	store    storage.Store
	keys     *keystore.Keystore
	disp     Dispatcher
	notifier *notify.Notifier
	trigger  Trigger
	adminID  int64
	log      logx.Logger

	// base is the application context; handler contexts derive from it so
	// a shutdown cancels in-flight command work.
	base context.Context
}

func NewRouter(
	adapter *Adapter,
	store storage.Store,
	keys *keystore.Keystore,
	disp Dispatcher,
	notifier *notify.Notifier,
	trigger Trigger,
	cfg RouterConfig,
	log logx.Logger,
) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		adapter:  adapter,
		store:    store,
		keys:     keys,
		disp:     disp,
		notifier: notifier,
		trigger:  trigger,
		adminID:  cfg.AdminID,
		log:      log.With(logx.String("comp", "router")),
		base:     context.Background(),
	}
}

// Register wires every handler onto the bot. ctx becomes the base for all
// handler-scoped contexts.
func (r *Router) Register(ctx context.Context) {
	r.base = ctx
	b := r.adapter.Bot()

	b.Handle("/start", r.wrap("start", r.onStart))
	b.Handle("/menu", r.wrap("menu", r.onMenu))
	b.Handle("/help", r.wrap("help", r.onHelp))
	b.Handle("/addid", r.wrap("addid", r.onAddID))
	b.Handle("/myids", r.wrap("myids", r.onMyIDs))
	b.Handle("/removeids", r.wrap("removeids", r.onRemoveIDs))
	b.Handle("/like", r.wrap("like", r.onLike))
	b.Handle("/status", r.wrap("status", r.onStatus))

	b.Handle("/setkey", r.admin("setkey", r.onSetKey))
	b.Handle("/checkkey", r.admin("checkkey", r.onCheckKey))
	b.Handle("/listusers", r.admin("listusers", r.onListUsers))
	b.Handle("/stats", r.admin("stats", r.onStats))
	b.Handle("/broadcast", r.admin("broadcast", r.onBroadcast))
	b.Handle("/forcesend", r.admin("forcesend", r.onForceSend))

	b.Handle(tele.OnCallback, r.wrap("callback", r.onCallback))
}

// handlerTimeout bounds ordinary command work. Manual sends get their own
// longer deadline inside onLike since the remote call alone can take 60s.
const handlerTimeout = 30 * time.Second

func (r *Router) wrap(name string, fn func(ctx context.Context, c tele.Context) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(r.base, handlerTimeout)
		defer cancel()

		if err := fn(ctx, c); err != nil {
			r.log.Error("handler failed",
				logx.String("handler", name),
				logx.Int64("user", senderID(c)),
				logx.Err(err),
			)
			_ = c.Send("❌ Ocorreu um erro. Tente novamente.", htmlOpts)
		}
		return nil
	}
}

// admin wraps a handler that only the configured administrator may use.
// Anyone else gets a refusal, not silence.
func (r *Router) admin(name string, fn func(ctx context.Context, c tele.Context) error) tele.HandlerFunc {
	return r.wrap(name, func(ctx context.Context, c tele.Context) error {
		if senderID(c) != r.adminID {
			return c.Send("❌ Comando exclusivo do administrador.", htmlOpts)
		}
		return fn(ctx, c)
	})
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}

func senderUsername(c tele.Context) string {
	if s := c.Sender(); s != nil {
		return s.Username
	}
	return ""
}
