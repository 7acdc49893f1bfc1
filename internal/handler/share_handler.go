package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sadhanacard/internal/service"
)

// CreateShareSnapshot 持久化一份报告快照并返回外部访问链接
func (a *API) CreateShareSnapshot(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}

	rec, err := a.cards.Get(date)
	if err != nil {
		handleCardError(c, err)
		return
	}

	snapshot, err := a.shares.CreateSnapshot(date, rec)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "生成分享快照失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": snapshot.Token,
		"url":   a.baseURL + "/s/" + snapshot.Token,
		"text":  snapshot.Body,
	})
}

// ShowShareSnapshot 渲染公开的分享页面
func (a *API) ShowShareSnapshot(c *gin.Context) {
	token := c.Param("token")

	snapshot, err := a.shares.GetSnapshot(token)
	if err != nil {
		if errors.Is(err, service.ErrShareSnapshotNotFound) {
			c.HTML(http.StatusNotFound, "share.html", gin.H{
				"title": "Sadhana Report",
				"error": "分享内容不存在或已失效",
			})
			return
		}
		c.HTML(http.StatusInternalServerError, "share.html", gin.H{
			"title": "Sadhana Report",
			"error": "加载分享内容失败",
		})
		return
	}

	c.HTML(http.StatusOK, "share.html", gin.H{
		"title": "Sadhana Report",
		"date":  snapshot.CardDate,
		"body":  snapshot.Body,
	})
}
