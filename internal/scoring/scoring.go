// Package scoring 实现打分引擎：一组确定性的阈值函数，
// 把每日记录映射为 0–100 的组件分与合成分。
// 所有函数对任意输入全量定义：空值、非法数字一律按未填写计 0，绝不报错。
package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/sadhanacard/internal/record"
)

// Band 名称，仅用于展示层着色，不参与数值计算。
const (
	BandGood     = "good"
	BandWarn     = "warn"
	BandCritical = "critical"
)

// clockThreshold 表示「不晚于 cutoff 得 score」的一档，cutoff 为当日分钟数。
type clockThreshold struct {
	cutoff int
	score  int
}

// minuteThreshold 表示「不少于 floor 分钟得 score」的一档。
type minuteThreshold struct {
	floor int
	score int
}

var (
	sleepThresholds = []clockThreshold{
		{21 * 60, 100}, {21*60 + 30, 80}, {22 * 60, 60}, {22*60 + 30, 40}, {23 * 60, 20},
	}
	wakeThresholds = []clockThreshold{
		{4 * 60, 100}, {4*60 + 15, 80}, {4*60 + 30, 60}, {4*60 + 45, 40}, {5 * 60, 20},
	}
	japaTimeThresholds = []clockThreshold{
		{8 * 60, 100}, {12 * 60, 70}, {18 * 60, 40}, {21 * 60, 20},
	}
	dayRestThresholds = []clockThreshold{
		{60, 100}, {90, 60}, {120, 20},
	}
	listeningThresholds = []minuteThreshold{
		{60, 100}, {40, 80}, {20, 30},
	}
)

// Scores 汇总一条记录的全部组件分与合成分。
type Scores struct {
	Sleep      int
	Wake       int
	DayRest    int
	JapaRounds int
	JapaTime   int
	Japa       int
	Reading    int
	Shravanam  int

	Body    int
	Soul    int
	Overall int
}

// Evaluate 计算记录的所有得分。纯函数，只依赖记录字段。
func Evaluate(r record.DailyRecord) Scores {
	s := Scores{
		Sleep:      SleepScore(r),
		Wake:       WakeScore(r),
		DayRest:    DayRestScore(r),
		JapaRounds: JapaRoundsScore(r),
		JapaTime:   JapaTimeScore(r),
		Reading:    ReadingScore(r),
		Shravanam:  ShravanamScore(r),
	}

	// Japa 取两者较小值：数量和时段必须同时达标才得分
	s.Japa = minInt(s.JapaRounds, s.JapaTime)

	s.Body = roundMean(s.Sleep, s.Wake, s.DayRest)
	s.Soul = roundMean(s.Japa, s.Reading, s.Shravanam)
	s.Overall = roundMean(s.Body, s.Soul)

	return s
}

// SleepScore 按就寝时间打分，21:00 前满分，23:00 后为 0。
// 按当日字面比较：凌晨时间（如 00:30）会被视为很早，与历史数据保持一致。
func SleepScore(r record.DailyRecord) int {
	return classifyClock(r.Body.SleepTime, sleepThresholds)
}

// WakeScore 按起床时间打分，04:00 前满分。
func WakeScore(r record.DailyRecord) int {
	return classifyClock(r.Body.WakeUpTime, wakeThresholds)
}

// DayRestScore 按白天休息分钟数打分。未填写或无法解析计 0 分；
// 填写了的值走阈值表（显式的 0 分钟得 100）。
func DayRestScore(r record.DailyRecord) int {
	minutes, ok := parseNonNegativeInt(r.Body.DayRestMinutes)
	if !ok {
		return 0
	}
	for _, t := range dayRestThresholds {
		if minutes <= t.cutoff {
			return t.score
		}
	}
	return 0
}

// JapaRoundsScore 满 16 圈得 100，否则为 0。
func JapaRoundsScore(r record.DailyRecord) int {
	rounds, ok := parseNonNegativeInt(r.Soul.JapaRounds)
	if !ok || rounds < 16 {
		return 0
	}
	return 100
}

// JapaTimeScore 按完成时间打分，08:00 前满分。
func JapaTimeScore(r record.DailyRecord) int {
	return classifyClock(r.Soul.JapaCompletionTime, japaTimeThresholds)
}

// ReadingScore 按阅读时长（小时换算为分钟）打分。
func ReadingScore(r record.DailyRecord) int {
	return classifyMinutes(r.Soul.ReadingHours)
}

// ShravanamScore 按听闻时长打分，阈值与阅读相同。
func ShravanamScore(r record.DailyRecord) int {
	return classifyMinutes(r.Soul.ShravanamHours)
}

// Band 返回展示用的分档：≥80 good，≥60 warn，其余 critical。
func Band(score int) string {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandWarn
	default:
		return BandCritical
	}
}

// ParseClock 解析 HH:MM 或 HH:MM:SS 形式的当日时间，返回自零点起的分钟数。
// 两种形式等价："04:00" 与 "04:00:00" 比较结果一致。
func ParseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, false
		}
	}

	return hour*60 + minute, true
}

// classifyClock 返回第一个「值 ≤ cutoff」档位的分数，未命中或未填写为 0。
func classifyClock(value string, table []clockThreshold) int {
	minutes, ok := ParseClock(value)
	if !ok {
		return 0
	}
	for _, t := range table {
		if minutes <= t.cutoff {
			return t.score
		}
	}
	return 0
}

// classifyMinutes 将小时字符串换算为分钟后套用下限阈值表。
func classifyMinutes(hours string) int {
	minutes := parseHours(hours) * 60
	for _, t := range listeningThresholds {
		if minutes >= float64(t.floor) {
			return t.score
		}
	}
	return 0
}

func parseHours(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func parseNonNegativeInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}

// roundMean 对整数求平均并按常规四舍五入。
func roundMean(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
