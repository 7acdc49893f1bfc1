package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateFormat 是日期键使用的 ISO 格式。
const DateFormat = "2006-01-02"

// KeyPrefix 为存储键前缀，历史数据沿用此格式，不可更改。
const KeyPrefix = "sadhana_"

const (
	// StatusOnTime 表示按时打卡。
	StatusOnTime = "On Time"
	// StatusLate 表示延迟打卡。
	StatusLate = "Late"
	// DefaultShravanamSource 是听闻来源的默认值。
	DefaultShravanamSource = "Srila Prabhupada"
)

// ShravanamSources 列出可选的听闻来源。
var ShravanamSources = []string{DefaultShravanamSource, "Guru Maharaj", "HG RSP"}

// Reporting 记录打卡状态；DelayMinutes 仅在 Late 时有意义。
type Reporting struct {
	Status       string `json:"status"`
	DelayMinutes int    `json:"delayMinutes"`
}

// Body 记录身体层面的作息与投入。
// 时间与数值输入一律存字符串，空串表示未填写，解析失败按未填写处理。
type Body struct {
	WakeUpTime              string `json:"wakeUpTime"`
	SleepTime               string `json:"sleepTime"`
	DayRestMinutes          string `json:"dayRestMinutes"`
	WorkingHours            string `json:"workingHours"`
	WorkingDescription      string `json:"workingDescription"`
	MaterialEngagementHours string `json:"materialEngagementHours"`
	MaterialDescription     string `json:"materialDescription"`
}

// Soul 记录灵性修持相关条目。
type Soul struct {
	JapaRounds               string `json:"japaRounds"`
	JapaCompletionTime       string `json:"japaCompletionTime"`
	ReadingHours             string `json:"readingHours"`
	ReadingMaterial          string `json:"readingMaterial"`
	ShravanamHours           string `json:"shravanamHours"`
	ShravanamSource          string `json:"shravanamSource"`
	ShravanamDescription     string `json:"shravanamDescription"`
	SpiritualEngagementHours string `json:"spiritualEngagementHours"`
	SpiritualDescription     string `json:"spiritualDescription"`
	SevaHours                string `json:"sevaHours"`
	SevaDescription          string `json:"sevaDescription"`
}

// MangalAarti 是晨课清单中的嵌套分组，三项相互独立。
type MangalAarti struct {
	GuruAshtakam   bool `json:"guruAshtakam"`
	NarasimhaAarti bool `json:"narasimhaAarti"`
	TulsiAarti     bool `json:"tulsiAarti"`
}

// MorningProgram 是晨课清单。
type MorningProgram struct {
	Chanting        bool        `json:"chanting"`
	Sikshatakam     bool        `json:"sikshatakam"`
	MorningClass    bool        `json:"morningClass"`
	SlokaRecitation bool        `json:"slokaRecitation"`
	MangalAarti     MangalAarti `json:"mangalAarti"`
}

// DailyRecord 是某个日历日期的全部记录。日期键即身份，没有独立 ID。
// 结构与字段名沿用最初版本的存储形态，保证旧数据可以直接读入。
type DailyRecord struct {
	Reporting      Reporting      `json:"reporting"`
	Body           Body           `json:"body"`
	Soul           Soul           `json:"soul"`
	MorningProgram MorningProgram `json:"morningProgram"`
	Notes          string         `json:"notes"`
}

// Default 返回全空的默认记录：未填写日期读取到的就是它。
func Default() DailyRecord {
	return DailyRecord{
		Reporting: Reporting{Status: StatusOnTime},
		Soul:      Soul{ShravanamSource: DefaultShravanamSource},
	}
}

// Key 根据日期生成存储键，例如 sadhana_2024-05-01。
func Key(date string) string {
	return KeyPrefix + date
}

// ValidDate 校验日期是否为合法的 YYYY-MM-DD。
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// Decode 将存储的 JSON 叠加到默认记录之上。
// 缺失字段（包括 mangalAarti 内的单项）各自保留默认值，
// 因此旧版本写入的不完整数据也能安全读出。
func Decode(blob []byte) (DailyRecord, error) {
	rec := Default()
	if err := json.Unmarshal(blob, &rec); err != nil {
		return Default(), fmt.Errorf("decode daily record: %w", err)
	}
	rec.normalize()
	return rec, nil
}

// Encode 序列化记录，输出形态与 Decode 的输入保持一致。
func Encode(rec DailyRecord) ([]byte, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode daily record: %w", err)
	}
	return blob, nil
}

// Overlay 以 base 为底叠加一次字段级修改，返回全新的记录值。
// DailyRecord 仅含值类型，直接赋值即为完整拷贝，base 不会被改动。
func Overlay(base DailyRecord, patch []byte) (DailyRecord, error) {
	next := base
	if err := json.Unmarshal(patch, &next); err != nil {
		return base, fmt.Errorf("apply record patch: %w", err)
	}
	next.normalize()
	return next, nil
}

// Normalized 返回补全枚举默认值后的副本。
func Normalized(rec DailyRecord) DailyRecord {
	rec.normalize()
	return rec
}

func (r *DailyRecord) normalize() {
	if strings.TrimSpace(r.Reporting.Status) == "" {
		r.Reporting.Status = StatusOnTime
	}
	if strings.TrimSpace(r.Soul.ShravanamSource) == "" {
		r.Soul.ShravanamSource = DefaultShravanamSource
	}
}
