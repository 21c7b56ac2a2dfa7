package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/toyledger/business/web/errs"
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/toyledger/foundation/blockchain/state"
	"github.com/ardanlabs/toyledger/foundation/events"
	"github.com/ardanlabs/toyledger/foundation/validate"
	"github.com/ardanlabs/toyledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The upgrade wrote the response, the logger should see it.
	v.StatusCode = http.StatusSwitchingProtocols

	id, ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pk := h.State.RetrievePublicKey()
	return web.Respond(ctx, w, toBlock(0, h.State.RetrieveGenesis(), pk), http.StatusOK)
}

// Blocks returns every committed block in order.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pk := h.State.RetrievePublicKey()

	blocks := h.State.RetrieveBlocks()
	resp := make([]Block, len(blocks))
	for i, block := range blocks {
		resp[i] = toBlock(uint64(i), block, pk)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockByNumber returns the committed block with the specified number.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, block, err := h.block(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(num, block, h.State.RetrievePublicKey()), http.StatusOK)
}

// Merkle returns the merkle tree of the specified block with an inclusion
// proof for each of its transactions.
func (h Handlers) Merkle(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	num, block, err := h.block(r)
	if err != nil {
		return err
	}

	tree, err := block.MerkleTree()
	if err != nil {
		return fmt.Errorf("merkle tree for block %d: %w", num, err)
	}

	resp, err := toMerkle(num, tree)
	if err != nil {
		return fmt.Errorf("merkle proofs for block %d: %w", num, err)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the transactions waiting to be committed.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending := h.State.RetrievePending()
	return web.Respond(ctx, w, toTxs(pending, h.State.RetrievePublicKey()), http.StatusOK)
}

// SubmitTransaction signs a new transaction with the node key and adds it to
// the pending block.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var newTx NewTx
	if err := web.Decode(r, &newTx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "sender", newTx.Sender, "recipient", newTx.Recipient, "amount", newTx.Amount)

	tx, err := h.State.SubmitTransaction(newTx.Sender, newTx.Recipient, newTx.Amount)
	if err != nil {
		var ee *cipher.EncodingError
		if errors.As(err, &ee) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	return web.Respond(ctx, w, toTx(tx, h.State.RetrievePublicKey()), http.StatusCreated)
}

// Commit appends the pending block to the ledger.
func (h Handlers) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, num, err := h.State.CommitBlock()
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNothingPending):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, ledger.ErrChainBroken):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	resp := Commit{
		Status: "block committed",
		Block:  toBlock(num, block, h.State.RetrievePublicKey()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate audits the chain against the node key.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := Validation{
		Valid:  true,
		Blocks: len(h.State.RetrieveBlocks()),
	}

	if err := h.State.Validate(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func (h Handlers) block(r *http.Request) (uint64, *ledger.Block, error) {
	num, err := strconv.ParseUint(web.Param(r, "num"), 10, 64)
	if err != nil {
		return 0, nil, errs.NewTrusted(fmt.Errorf("invalid block number %q", web.Param(r, "num")), http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(num)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return 0, nil, errs.NewTrusted(err, http.StatusNotFound)
		}
		return 0, nil, err
	}

	return num, block, nil
}
