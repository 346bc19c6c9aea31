package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/rafaelmp/pedidos/internal/domain/coupon"
	"github.com/rafaelmp/pedidos/internal/domain/order"
)

// maxBodyBytes caps request bodies; the API only ever receives small JSON
// documents.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// writeDomainError maps domain errors onto HTTP statuses: validation 400,
// missing order 404, illegal transition 409, bad coupon 422. Anything else
// is logged and surfaced as a generic 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *order.ValidationError
		nf *order.NotFoundError
		se *order.InvalidStateError
		ce *coupon.InvalidCouponError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &se):
		writeError(w, http.StatusConflict, se.Error())
	case errors.As(err, &ce):
		writeError(w, http.StatusUnprocessableEntity, ce.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// encodeOrder writes the wire form of an order. Totals always carry two
// fraction digits: String() would trim "90.00" down to "90".
func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("customerName", func(e *jx.Encoder) { e.Str(o.CustomerName) })
		e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(o.Total.StringFixed(2))) })
		e.Field("orderDate", func(e *jx.Encoder) { e.Str(o.OrderDate.Format(order.DateLayout)) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
	})
}
