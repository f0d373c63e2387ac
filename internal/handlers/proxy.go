// Package handlers exposes the RPC surface consumed by the LDAP front
// end: form-encoded bind and search calls answered with JSON decisions.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DanielBatteryStapler/daniel-authenticator/internal/directory"
	"github.com/DanielBatteryStapler/daniel-authenticator/internal/strand"
)

// BindResponse is the wire shape the front end unmarshals for /bind.
type BindResponse struct {
	Result bool   `json:"Result"`
	Strand string `json:"Strand"`
}

// SearchResponse is the wire shape the front end unmarshals for /search.
type SearchResponse struct {
	Result   bool               `json:"Result"`
	Entities []directory.Entity `json:"Entities"`
	Strand   string             `json:"Strand"`
}

// ProxyHandler answers the front end's bind and search calls.
type ProxyHandler struct {
	directory *directory.Directory
}

func NewProxyHandler(d *directory.Directory) *ProxyHandler {
	return &ProxyHandler{directory: d}
}

// Bind handles POST /bind. Fields: bindDN, bindSimplePw, boundDN,
// connectionNumber, strand. The decision never distinguishes "no such
// identity" from "bad credentials".
func (h *ProxyHandler) Bind(c *gin.Context) {
	bindDN := c.PostForm("bindDN")
	secret := c.PostForm("bindSimplePw")
	trail := strand.Strand(c.PostForm("strand"))

	allowed, trail, err := h.directory.Bind(bindDN, secret, trail)
	if err != nil {
		log.Printf("bind failed against the store: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, BindResponse{
		Result: allowed,
		Strand: trail.String(),
	})
}

// Search handles POST /search. Fields: boundDN, BaseDN, connectionNumber,
// strand. boundDN is trusted: the front end only sets it after a
// successful bind on the same connection.
func (h *ProxyHandler) Search(c *gin.Context) {
	boundDN := c.PostForm("boundDN")
	baseDN := c.PostForm("BaseDN")
	trail := strand.Strand(c.PostForm("strand"))

	allowed, entities, trail, err := h.directory.Search(boundDN, baseDN, trail)
	if err != nil {
		log.Printf("search failed against the store: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	if entities == nil {
		entities = []directory.Entity{}
	}

	c.JSON(http.StatusOK, SearchResponse{
		Result:   allowed,
		Entities: entities,
		Strand:   trail.String(),
	})
}
