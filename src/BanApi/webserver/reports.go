package webserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mfl-ops/banbot/src/BanBot/components/ledger"
)

// Reports serves read-only views over the ban ledger. All mutation goes
// through the bot's review flow, never the API.
type Reports struct {
	store     *ledger.Store
	sanitizer *bluemonday.Policy
}

func NewReports(store *ledger.Store) Reports {
	return Reports{store: store, sanitizer: bluemonday.StrictPolicy()}
}

func (r Reports) Health(c *gin.Context) {
	if err := r.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r Reports) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	records, err := r.store.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bans": records})
}

func (r Reports) ByNumber(c *gin.Context) {
	number := strings.ToUpper(strings.TrimSpace(c.Param("number")))
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing ban number"})
		return
	}

	rec, err := r.store.ByNumber(number)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "ban not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r Reports) Search(c *gin.Context) {
	term := r.sanitizer.Sanitize(strings.TrimSpace(c.Query("term")))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing search term"})
		return
	}

	// An exact ban number match wins over the fuzzy search.
	if rec, err := r.store.ByNumber(strings.ToUpper(term)); err == nil && rec != nil {
		c.JSON(http.StatusOK, gin.H{"bans": []ledger.BanRecord{*rec}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	records, err := r.store.Search(term, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bans": records})
}

func (r Reports) PlayerHistory(c *gin.Context) {
	buid := strings.TrimSpace(c.Param("buid"))
	records, err := r.store.PlayerHistory(buid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	strikes, err := r.store.ActiveStrikeCount(buid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"buid":          buid,
		"totalRecords":  len(records),
		"activeStrikes": strikes,
		"history":       records,
	})
}

func (r Reports) Strikes(c *gin.Context) {
	buid := strings.TrimSpace(c.Param("buid"))
	strikes, err := r.store.ActiveStrikeCount(buid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buid": buid, "activeStrikes": strikes})
}

func (r Reports) Stats(c *gin.Context) {
	stats, err := r.store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (r Reports) RepeatOffenders(c *gin.Context) {
	minBans, _ := strconv.Atoi(c.DefaultQuery("min_bans", "2"))
	rows, err := r.store.RepeatOffenders(minBans)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offenders": rows})
}
