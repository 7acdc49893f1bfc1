package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sadhanacard/internal/record"
	"github.com/sadhanacard/internal/scoring"
	"github.com/sadhanacard/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	notesSanitizer = bluemonday.UGCPolicy()
)

// ShowCard 渲染每日表单页面，未指定日期时默认今天
func (a *API) ShowCard(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = todayKey()
	}

	rec, err := a.cards.Get(date)
	if err != nil {
		c.HTML(http.StatusBadRequest, "card.html", gin.H{
			"title": "Sadhana Card",
			"date":  todayKey(),
			"error": "无效的日期",
		})
		return
	}

	c.HTML(http.StatusOK, "card.html", gin.H{
		"title":  "Sadhana Card",
		"date":   date,
		"record": rec,
		"scores": scoresPayload(scoring.Evaluate(rec)),
	})
}

// GetRecord 返回指定日期的记录与得分
func (a *API) GetRecord(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	rec, err := a.cards.Get(date)
	if err != nil {
		handleCardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"record": rec,
		"scores": scoresPayload(scoring.Evaluate(rec)),
	})
}

// ReplaceRecord 整体替换记录并调度去抖保存
func (a *API) ReplaceRecord(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	var payload record.DailyRecord
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	rec, err := a.cards.Replace(date, payload)
	if err != nil {
		handleCardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"record": rec,
		"scores": scoresPayload(scoring.Evaluate(rec)),
		"save":   "pending",
	})
}

// PatchRecord 叠加一次字段级修改，补丁里出现的字段才会被覆盖
func (a *API) PatchRecord(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	patch, err := io.ReadAll(c.Request.Body)
	if err != nil || len(bytes.TrimSpace(patch)) == 0 {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	rec, err := a.cards.Apply(date, patch)
	if err != nil {
		handleCardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"record": rec,
		"scores": scoresPayload(scoring.Evaluate(rec)),
		"save":   "pending",
	})
}

// SaveRecordNow 跳过安静期立即落库
func (a *API) SaveRecordNow(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	if err := a.cards.SaveNow(date); err != nil {
		if errors.Is(err, service.ErrInvalidCardDate) {
			respondError(c, http.StatusBadRequest, "无效的日期")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// GetRecordStatus 返回脏标记与最近一次写入错误，供前端展示保存提示
func (a *API) GetRecordStatus(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	status := a.cards.Status(date)
	c.JSON(http.StatusOK, gin.H{
		"date":       date,
		"dirty":      status.Dirty,
		"last_error": status.LastError,
	})
}

// GetRecordReport 返回分享文本与深链，复制剪贴板成功后方可打开深链
func (a *API) GetRecordReport(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	rec, err := a.cards.Get(date)
	if err != nil {
		handleCardError(c, err)
		return
	}

	rep := a.shares.BuildReport(date, rec)
	c.JSON(http.StatusOK, gin.H{
		"date":         rep.Date,
		"text":         rep.Text,
		"whatsapp_url": rep.WhatsAppURL,
	})
}

// PreviewNotes 将备注按 Markdown 渲染并消毒后返回
func (a *API) PreviewNotes(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	rec, err := a.cards.Get(date)
	if err != nil {
		handleCardError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(rec.Notes), &buf); err != nil {
		respondError(c, http.StatusInternalServerError, "渲染备注失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date": date,
		"html": notesSanitizer.Sanitize(buf.String()),
	})
}

// scoresPayload 序列化组件分、合成分及展示分档。
func scoresPayload(s scoring.Scores) gin.H {
	return gin.H{
		"components": gin.H{
			"sleep":       s.Sleep,
			"wake":        s.Wake,
			"day_rest":    s.DayRest,
			"japa_rounds": s.JapaRounds,
			"japa_time":   s.JapaTime,
			"japa":        s.Japa,
			"reading":     s.Reading,
			"shravanam":   s.Shravanam,
		},
		"body":    s.Body,
		"soul":    s.Soul,
		"overall": s.Overall,
		"bands": gin.H{
			"body":    scoring.Band(s.Body),
			"soul":    scoring.Band(s.Soul),
			"overall": scoring.Band(s.Overall),
		},
	}
}

func handleCardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCardDate):
		respondError(c, http.StatusBadRequest, "无效的日期")
	case errors.Is(err, service.ErrInvalidCardPatch):
		respondError(c, http.StatusBadRequest, "请求参数不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
