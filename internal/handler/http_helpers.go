package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadhanacard/internal/record"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// dateParam 取出并校验路径中的日期键。
func dateParam(c *gin.Context) (string, bool) {
	date := strings.TrimSpace(c.Param("date"))
	if !record.ValidDate(date) {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return "", false
	}
	return date, true
}

// todayKey 返回本地时区的当天日期键，作为未指定日期时的默认值。
func todayKey() string {
	return time.Now().In(time.Local).Format(record.DateFormat)
}
