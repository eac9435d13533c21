package controllers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"grouporder/aggregator"
	"grouporder/apperr"
	"grouporder/logger"
	"grouporder/middleware"
	"grouporder/models"
	"grouporder/store"
)

const producerFetchLimit = 4

type OrderController struct {
	orders    store.OrderStore
	producers store.ProducerStore
	timeout   time.Duration
	log       *logger.Logger
}

func NewOrderController(orders store.OrderStore, producers store.ProducerStore, timeout time.Duration, log *logger.Logger) *OrderController {
	return &OrderController{orders: orders, producers: producers, timeout: timeout, log: log}
}

type orderView struct {
	models.Order
	Producer models.ProducerInfo `json:"producer"`
	FormPath string              `json:"formPath"`
}

func formPath(orderID string) string {
	return "/api/order-form/" + orderID + "/sessions"
}

// Create opens an empty group order for a producer. Anyone holding the
// order id can submit into it.
func (o *OrderController) Create(c *gin.Context) {
	var body struct {
		ProducerID string `json:"producerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid", "producerId is required")
		return
	}

	ctx, cancel := requestContext(c, o.timeout)
	defer cancel()

	producer, err := o.producers.FindProducer(ctx, body.ProducerID)
	if errors.Is(err, store.ErrNotFound) {
		respondAppError(c, o.log, apperr.NotFound("producer", body.ProducerID))
		return
	}
	if err != nil {
		respondAppError(c, o.log, err)
		return
	}

	order := models.Order{
		ID:         primitive.NewObjectID().Hex(),
		ProducerID: producer.ID,
		CreatedBy:  c.GetString(middleware.ContextUserID),
		CreatedAt:  time.Now().UTC(),
		Members:    map[string]models.Member{},
	}
	if err := o.orders.CreateOrder(ctx, &order); err != nil {
		respondAppError(c, o.log, &apperr.WriteFailure{Op: "create order", Err: err})
		return
	}

	o.log.Info("order created", "order_id", order.ID, "producer_id", order.ProducerID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   orderView{Order: order, Producer: producer.Info(), FormPath: formPath(order.ID)},
	})
}

// Mine lists the caller's orders, newest first, with producer headers
// fetched concurrently.
func (o *OrderController) Mine(c *gin.Context) {
	ctx, cancel := requestContext(c, o.timeout)
	defer cancel()

	orders, err := o.orders.ListOrdersByCreator(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondAppError(c, o.log, err)
		return
	}

	infos, err := o.producerInfos(ctx, orders)
	if err != nil {
		respondAppError(c, o.log, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView{Order: order, Producer: infos[order.ProducerID], FormPath: formPath(order.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

func (o *OrderController) producerInfos(ctx context.Context, orders []models.Order) (map[string]models.ProducerInfo, error) {
	var (
		mu    sync.Mutex
		infos = make(map[string]models.ProducerInfo)
		seen  = make(map[string]bool)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(producerFetchLimit)
	for _, order := range orders {
		id := order.ProducerID
		if seen[id] {
			continue
		}
		seen[id] = true
		g.Go(func() error {
			p, err := o.producers.FindProducer(gctx, id)
			if errors.Is(err, store.ErrNotFound) {
				// The producer was removed after the order was opened.
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			infos[id] = p.Info()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Summary shows every member's line items with subtotals, the recomputed
// total and its drift from the stored Total_Amount.
func (o *OrderController) Summary(c *gin.Context) {
	ctx, cancel := requestContext(c, o.timeout)
	defer cancel()

	orderID := c.Param("orderId")
	order, err := o.orders.FindOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		respondAppError(c, o.log, apperr.NotFound("order", orderID))
		return
	}
	if err != nil {
		respondAppError(c, o.log, err)
		return
	}

	infos, err := o.producerInfos(ctx, []models.Order{*order})
	if err != nil {
		respondAppError(c, o.log, err)
		return
	}

	summary := aggregator.Summarize(order)
	c.JSON(http.StatusOK, gin.H{
		"producer":      infos[order.ProducerID],
		"orderId":       summary.OrderID,
		"members":       summary.Members,
		"computedTotal": summary.ComputedTotal.StringFixed(2),
		"storedTotal":   summary.StoredTotal.StringFixed(2),
		"drift":         summary.Drift.StringFixed(2),
	})
}
