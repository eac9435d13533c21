package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grouporder/catalog"
	"grouporder/logger"
	"grouporder/store"
)

type ProducerController struct {
	producers store.ProducerStore
	loader    *catalog.Loader
	timeout   time.Duration
	log       *logger.Logger
}

func NewProducerController(producers store.ProducerStore, loader *catalog.Loader, timeout time.Duration, log *logger.Logger) *ProducerController {
	return &ProducerController{producers: producers, loader: loader, timeout: timeout, log: log}
}

func (p *ProducerController) List(c *gin.Context) {
	ctx, cancel := requestContext(c, p.timeout)
	defer cancel()

	producers, err := p.producers.ListProducers(ctx)
	if err != nil {
		respondAppError(c, p.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"producers": producers})
}

// Details returns the producer header and its products in display order,
// each as a fresh entry with quantity 0.
func (p *ProducerController) Details(c *gin.Context) {
	ctx, cancel := requestContext(c, p.timeout)
	defer cancel()

	cat, err := p.loader.Load(ctx, c.Param("producerId"))
	if err != nil {
		respondAppError(c, p.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"producer": cat.Producer,
		"entries":  cat.Entries.Entries(),
	})
}
