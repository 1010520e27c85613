package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultExclude lists terms that mark a candidate name as boilerplate rather
// than equipment: address/contact labels, accessibility amenities, and
// administrative headings. Matched as substrings. The list was grown against
// real documents and is extendable via a keyword file; it is not assumed
// complete for unseen formats.
var defaultExclude = []string{
	"遊具設施",
	"行政區",
	"地址",
	"適用對象",
	"啟用日期",
	"交通資訊",
	"遮陽設施",
	"休息區",
	"沖洗區",
	"輪椅",
	"無障礙",
	"哺乳室",
	"育嬰室",
	"對外開放",
	"開放時間",
	"停車位",
	"醫療院所",
	"主管機關",
	"聯繫窗口",
	"遊樂場資訊",
	"點閱數",
	"資料更新",
	"資料檢視",
	"資料維護",
	"周邊設施",
	"安全告示牌",
	"太陽能",
	"LED",
	"燈",
	"坡道",
	"平台",
	"電話",
	"注意事項",
	"國民小學",
	"政府",
	"教育局",
}

// defaultStructural lists layout words that disqualify a whole line in the
// line-scan strategy: table headings, pagination, counts.
var defaultStructural = []string{
	"照片",
	"說明",
	"內容",
	"數量",
	"頁",
}

// defaultEquipment is the allowlist of stems that identify a line as naming
// play equipment.
var defaultEquipment = []string{
	"攀爬",
	"滑梯",
	"鞦韆",
	"旋轉",
	"遊戲",
	"傳聲",
	"搖搖",
	"彈跳",
	"沙坑",
	"翹翹板",
	"平衡木",
	"單槓",
}

// sectionMarkers end the quantity-list segment; the facility enumeration runs
// until the next of these headings.
var sectionMarkers = []string{"周邊設施", "主管機關", "遊樂場資訊"}

// KeywordFile is the on-disk extension format for the keyword lists.
type KeywordFile struct {
	Exclude   []string `yaml:"exclude"`
	Equipment []string `yaml:"equipment"`
}

// ExtendFromFile merges extra keywords from a YAML file into the extractor's
// lists. Missing sections are ignored.
func (e *Extractor) ExtendFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "extract: read keyword file %s", path)
	}

	var kf KeywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return eris.Wrapf(err, "extract: parse keyword file %s", path)
	}

	e.exclude = append(e.exclude, kf.Exclude...)
	e.equipment = append(e.equipment, kf.Equipment...)
	return nil
}
