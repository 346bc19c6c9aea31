package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rafaelmp/pedidos/internal/domain/order"
)

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	req, err := decodeCreateOrder(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	o, err := h.orders.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.metrics.OrdersCreated != nil {
		h.metrics.OrdersCreated.Add(r.Context(), 1)
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, o := range all {
				encodeOrder(e, o)
			}
		})
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, (&order.NotFoundError{ID: id}).Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	code, err := decodeCoupon(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	total, err := h.orders.ApplyCoupon(r.Context(), id, code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(id) })
			e.Field("newTotal", func(e *jx.Encoder) { e.Num(jx.Num(total.StringFixed(2))) })
		})
	})
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Pay(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(o.ID) })
			e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		})
	})
}

func (h *Handler) fulfillOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	res, err := h.orders.Fulfill(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.metrics.OrdersFulfilled != nil {
		h.metrics.OrdersFulfilled.Add(r.Context(), 1, metric.WithAttributes(
			attribute.Bool("free", res.Order.Total.Sign() <= 0),
		))
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(res.Order.ID) })
			e.Field("total", func(e *jx.Encoder) { e.Num(jx.Num(res.Order.Total.StringFixed(2))) })
			e.Field("status", func(e *jx.Encoder) { e.Str(string(res.Order.Status)) })
			e.Field("receipt", func(e *jx.Encoder) { e.Str(res.Receipt) })
		})
	})
}

// orderID parses the {id} route parameter. On failure it writes a 400 and
// returns ok=false.
func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "order id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeCreateOrder(data []byte) (order.CreateOrderRequest, error) {
	var req order.CreateOrderRequest
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customerName":
			v, err := d.Str()
			req.CustomerName = v
			return err
		case "total":
			n, err := d.Num()
			if err != nil {
				return err
			}
			// Keep the exact literal: going through a float here would
			// defeat the decimal representation.
			t, err := decimal.NewFromString(strings.Trim(string(n), `"`))
			if err != nil {
				return err
			}
			req.Total = t
			return nil
		case "orderDate":
			v, err := d.Str()
			req.OrderDate = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return order.CreateOrderRequest{}, err
	}
	return req, nil
}

func decodeCoupon(data []byte) (string, error) {
	var code string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "coupon":
			v, err := d.Str()
			code = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return "", err
	}
	return code, nil
}
