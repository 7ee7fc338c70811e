package ner

import "github.com/ternarybob/playbook/internal/models"

// PatternRule pairs a regular expression with the confidence assigned to its
// matches. All rules are matched case-insensitively.
type PatternRule struct {
	Pattern    string
	Confidence float64
}

// defaultRegistry is the per-category rule table covering the CN/EN coverage
// universe. It is data, not logic: swapping in a different registry does not
// touch the extraction algorithm.
var defaultRegistry = map[models.EntityType][]PatternRule{
	models.EntityCompany: {
		// Quantum computing companies
		{`\bIonQ\b`, 0.95},
		{`艾恩[Qq]`, 0.95},
		{`\bRigetti\b`, 0.95},
		{`里[盖蓋][蒂帝]`, 0.90},
		{`\bD[-\s]?Wave\b`, 0.95},
		{`\bPasqal\b`, 0.95},

		// Rare earth / graphite companies
		{`\bMP Materials\b`, 0.95},
		{`\bLynas\b`, 0.95},
		{`\bGraphite One\b`, 0.95},
		{`石墨一[号號]`, 0.95},
		{`\bSyrah Resources\b`, 0.90},
		{`\bNorthern Graphite\b`, 0.90},

		// General patterns
		{`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Inc|Corp|Ltd|LLC|Co)\b`, 0.70},
		{`[A-Z]{2,5}(?:\s+[A-Z]{2,5})*`, 0.60}, // ticker-like uppercase runs
	},
	models.EntityCommodity: {
		// Rare earths
		{`稀土(?:元素)?`, 0.95},
		{`\brare\s+earth[s]?\b`, 0.95},
		{`\bREE\b`, 0.90},

		// Graphite
		{`石墨`, 0.95},
		{`\bgraphite\b`, 0.95},
		{`[天自]然石墨`, 0.95},
		{`负极材料`, 0.90},

		// Gold
		{`黄金`, 0.95},
		{`\bgold\b`, 0.95},

		// Agricultural
		{`花生(?:期[货貨])?`, 0.90},
		{`玉米`, 0.90},
		{`大豆`, 0.90},
		{`\bcorn\b`, 0.85},
		{`\bsoybean[s]?\b`, 0.85},

		// General
		{`期[货貨]`, 0.70},
		{`\bfutures?\b`, 0.70},
	},
	models.EntityExchange: {
		{`\bNASDAQ\b`, 0.95},
		{`\bNYSE\b`, 0.95},
		{`\bTSX\b`, 0.95},
		{`\bASX\b`, 0.95},
		{`上[海交]所`, 0.95},
		{`上期所`, 0.95},
		{`\bSHFE\b`, 0.95},
		{`芝商所`, 0.95},
		{`\bCME\b`, 0.95},
		{`\bCOMEX\b`, 0.95},
		{`大商所`, 0.95},
		{`郑商所`, 0.95},
	},
	models.EntityCountry: {
		{`美[国國]`, 0.95},
		{`\bU\.?S\.?A?\b`, 0.95},
		{`\bUnited States\b`, 0.95},
		{`中[国國]`, 0.95},
		{`\bChina\b`, 0.95},
		{`欧[盟洲]`, 0.95},
		{`\bEU\b`, 0.95},
		{`\bEurope\b`, 0.90},
		{`加拿大`, 0.95},
		{`\bCanada\b`, 0.95},
		{`澳[大洲]利[亚亞]`, 0.95},
		{`\bAustralia\b`, 0.95},
		{`墨西哥`, 0.95},
		{`\bMexico\b`, 0.95},
	},
	models.EntityPolicyActor: {
		{`美[联聯][储儲]`, 0.95},
		{`\bFed\b`, 0.95},
		{`\bFederal Reserve\b`, 0.95},
		{`[欧歐]洲央行`, 0.95},
		{`\bECB\b`, 0.95},
		{`人民[银銀]行`, 0.95},
		{`\bPBOC\b`, 0.90},
		{`[国國][务務]院`, 0.90},
		{`商[务務]部`, 0.90},
		{`[财財][政経]部`, 0.90},
	},
	models.EntityRatingAgency: {
		{`\bMoody'?s\b`, 0.95},
		{`穆迪`, 0.95},
		{`\bS&P\b`, 0.95},
		{`\bStandard & Poor'?s\b`, 0.95},
		{`标[准準]普[尔爾]`, 0.95},
		{`\bFitch\b`, 0.95},
		{`惠[誉譽]`, 0.95},
	},
}
