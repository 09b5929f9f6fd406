package handlers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

// View axes, one per browsable record family.
const (
	AxisCommunity   = "community"
	AxisVillage     = "village"
	AxisBeneficiary = "beneficiary"
	AxisVaccination = "vaccination"
	AxisDisease     = "disease"
	AxisPredation   = "predation"
	AxisWorker      = "worker"
)

// AllowedDimensions is the grouping contract: for each axis, the dimensions
// a caller may group by. Anything else is rejected before touching the store.
var AllowedDimensions = map[string][]string{
	AxisCommunity:   {"country", "province", "district", "protection_status"},
	AxisVillage:     {"community", "population"},
	AxisBeneficiary: {"village", "community"},
	AxisVaccination: {"year", "season", "community", "village", "worker"},
	AxisDisease:     {"year", "season", "community", "village", "worker"},
	AxisPredation:   {"year", "season", "community", "village", "worker"},
	AxisWorker:      {"education", "status"},
}

// Population size-range labels for the village "population" dimension.
const (
	PopSmall     = "Small"
	PopMedium    = "Medium"
	PopLarge     = "Large"
	PopVeryLarge = "Very Large"
)

const unknownGroup = "Unknown"

var (
	errUnknownAxis  = errors.New("unknown view axis")
	errBadDimension = errors.New("dimension not allowed for this axis")
)

// ViewEngine turns browse queries into rendered tabular results. All cell
// rendering happens server side so search, grouping, export and the JSON
// response all agree on what a value looks like.
type ViewEngine struct {
	db *gorm.DB
}

func NewViewEngine(db *gorm.DB) *ViewEngine {
	return &ViewEngine{db: db}
}

// ViewQuery is one browse request. Year only applies to the three record
// axes; Search is matched case-insensitively against rendered cells after
// fetching.
type ViewQuery struct {
	Axis    string
	GroupBy string
	Year    int
	Search  string
}

type ViewHeader struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type ViewGroup struct {
	Key   string     `json:"key"`
	Count int        `json:"count"`
	Rows  [][]string `json:"rows"`
}

type ViewResult struct {
	Axis    string         `json:"axis"`
	Headers []ViewHeader   `json:"headers"`
	Rows    [][]string     `json:"rows,omitempty"`
	Groups  []ViewGroup    `json:"groups,omitempty"`
	Summary map[string]any `json:"summary"`
	Meta    ViewMeta       `json:"meta"`
}

type ViewMeta struct {
	TotalRows   int       `json:"totalRows"`
	Year        int       `json:"year,omitempty"`
	GroupBy     string    `json:"groupBy,omitempty"`
	Search      string    `json:"search,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// viewItem is one fetched record normalized for grouping: the rendered row
// plus the linked rows the group-key chains walk, plus the raw quantities
// the summary needs.
type viewItem struct {
	cells     []string
	visitID   uint
	year      int
	season    string
	community *models.Community
	village   *models.Village
	worker    *models.EchWorker
	count     float64
	value     float64
}

// groupAccessors resolves a grouping dimension to its key for one item. Each
// accessor walks its chain of linked rows in precedence order and falls back
// to the shared Unknown bucket when nothing along the chain is set.
var groupAccessors = map[string]func(it viewItem) string{
	"year": func(it viewItem) string {
		if it.year == 0 {
			return unknownGroup
		}
		return strconv.Itoa(it.year)
	},
	"season": func(it viewItem) string {
		if it.season == "" {
			return unknownGroup
		}
		return it.season
	},
	"community": func(it viewItem) string {
		if it.community != nil && it.community.Name != "" {
			return it.community.Name
		}
		if it.village != nil {
			if it.village.Community != nil && it.village.Community.Name != "" {
				return it.village.Community.Name
			}
			if it.village.CommunityName != "" {
				return it.village.CommunityName
			}
		}
		return unknownGroup
	},
	"village": func(it viewItem) string {
		if it.village != nil && it.village.Name != "" {
			return it.village.Name
		}
		return unknownGroup
	},
	"worker": func(it viewItem) string {
		if it.worker != nil && it.worker.Name != "" {
			return it.worker.Name
		}
		return unknownGroup
	},
	"country": func(it viewItem) string {
		return communityField(it, func(c *models.Community) *string { return c.Country })
	},
	"province": func(it viewItem) string {
		return communityField(it, func(c *models.Community) *string { return c.Province })
	},
	"district": func(it viewItem) string {
		return communityField(it, func(c *models.Community) *string { return c.District })
	},
	"protection_status": func(it viewItem) string {
		return communityField(it, func(c *models.Community) *string { return c.ProtectionStatus })
	},
	"population": func(it viewItem) string {
		if it.village == nil {
			return unknownGroup
		}
		return populationBucket(it.village.Population)
	},
	"education": func(it viewItem) string {
		if it.worker == nil || it.worker.HighestEducation == nil || *it.worker.HighestEducation == "" {
			return unknownGroup
		}
		return *it.worker.HighestEducation
	},
	"status": func(it viewItem) string {
		if it.worker == nil {
			return unknownGroup
		}
		return it.worker.EmploymentStatus()
	},
}

func communityField(it viewItem, pick func(*models.Community) *string) string {
	community := it.community
	if community == nil && it.village != nil {
		community = it.village.Community
	}
	if community == nil {
		return unknownGroup
	}
	if v := pick(community); v != nil && *v != "" {
		return *v
	}
	return unknownGroup
}

// populationBucket maps a village population onto its size range. An
// unrecorded or zero population is Unknown, not Small.
func populationBucket(pop *int) string {
	if pop == nil || *pop == 0 {
		return unknownGroup
	}
	switch p := *pop; {
	case p < 100:
		return PopSmall
	case p < 500:
		return PopMedium
	case p < 1000:
		return PopLarge
	default:
		return PopVeryLarge
	}
}

// YearOptions lists the selectable record years: the last ten, newest first.
func YearOptions(now time.Time) []int {
	years := make([]int, 0, 10)
	for y := now.Year(); y > now.Year()-10; y-- {
		years = append(years, y)
	}
	return years
}

var axisHeaders = map[string][]ViewHeader{
	AxisCommunity: {
		{Key: "name", Label: "Community", Kind: CellText},
		{Key: "alias", Label: "Alias", Kind: CellText},
		{Key: "country", Label: "Country", Kind: CellText},
		{Key: "province", Label: "Province", Kind: CellText},
		{Key: "district", Label: "District", Kind: CellText},
		{Key: "area", Label: "Area (km²)", Kind: CellNumber},
		{Key: "forest_area", Label: "Forest Area (km²)", Kind: CellNumber},
		{Key: "pasture_land", Label: "Pasture Land (km²)", Kind: CellNumber},
		{Key: "protection_status", Label: "Protection Status", Kind: CellText},
	},
	AxisVillage: {
		{Key: "name", Label: "Village", Kind: CellText},
		{Key: "community", Label: "Community", Kind: CellText},
		{Key: "population", Label: "Population", Kind: CellNumber},
		{Key: "area", Label: "Area (km²)", Kind: CellNumber},
		{Key: "gps", Label: "GPS", Kind: CellText},
	},
	AxisBeneficiary: {
		{Key: "name", Label: "Beneficiary", Kind: CellText},
		{Key: "father_name", Label: "Father Name", Kind: CellText},
		{Key: "village", Label: "Village", Kind: CellText},
		{Key: "community", Label: "Community", Kind: CellText},
	},
	AxisVaccination: {
		{Key: "date", Label: "Date", Kind: CellDate},
		{Key: "year", Label: "Year", Kind: CellNumber},
		{Key: "season", Label: "Season", Kind: CellText},
		{Key: "beneficiary", Label: "Beneficiary", Kind: CellText},
		{Key: "village", Label: "Village", Kind: CellText},
		{Key: "community", Label: "Community", Kind: CellText},
		{Key: "worker", Label: "ECH Worker", Kind: CellText},
		{Key: "vaccination_type", Label: "Vaccination Type", Kind: CellText},
		{Key: "animals_vaccinated", Label: "Animals Vaccinated", Kind: CellSummary},
		{Key: "animals_sold", Label: "Animals Sold", Kind: CellSummary},
		{Key: "sales_income", Label: "Sales Income", Kind: CellCurrency},
		{Key: "donor", Label: "Donor", Kind: CellText},
	},
	AxisDisease: {
		{Key: "date", Label: "Date", Kind: CellDate},
		{Key: "year", Label: "Year", Kind: CellNumber},
		{Key: "season", Label: "Season", Kind: CellText},
		{Key: "beneficiary", Label: "Beneficiary", Kind: CellText},
		{Key: "village", Label: "Village", Kind: CellText},
		{Key: "community", Label: "Community", Kind: CellText},
		{Key: "worker", Label: "ECH Worker", Kind: CellText},
		{Key: "disease_type", Label: "Disease", Kind: CellText},
		{Key: "animals_affected", Label: "Animals Affected", Kind: CellSummary},
		{Key: "symptoms", Label: "Symptoms", Kind: CellText},
	},
	AxisPredation: {
		{Key: "date", Label: "Date", Kind: CellDate},
		{Key: "year", Label: "Year", Kind: CellNumber},
		{Key: "season", Label: "Season", Kind: CellText},
		{Key: "beneficiary", Label: "Beneficiary", Kind: CellText},
		{Key: "village", Label: "Village", Kind: CellText},
		{Key: "community", Label: "Community", Kind: CellText},
		{Key: "worker", Label: "ECH Worker", Kind: CellText},
		{Key: "predator_type", Label: "Predator", Kind: CellText},
		{Key: "animals_lost", Label: "Animals Lost", Kind: CellSummary},
		{Key: "loss_value", Label: "Loss Value", Kind: CellCurrency},
	},
	AxisWorker: {
		{Key: "id", Label: "ID", Kind: CellNumber},
		{Key: "name", Label: "Name", Kind: CellText},
		{Key: "username", Label: "Username", Kind: CellText},
		{Key: "education", Label: "Highest Education", Kind: CellText},
		{Key: "phone", Label: "Phone", Kind: CellText},
		{Key: "joining_date", Label: "Joining Date", Kind: CellDate},
		{Key: "status", Label: "Status", Kind: CellText},
	},
}

// recordAxis reports whether the axis is backed by field visit records and
// therefore accepts the year filter.
func recordAxis(axis string) bool {
	return axis == AxisVaccination || axis == AxisDisease || axis == AxisPredation
}

// Execute runs one browse query end to end: validate, fetch, search filter,
// group, summarize.
func (e *ViewEngine) Execute(ctx context.Context, q ViewQuery) (*ViewResult, error) {
	headers, ok := axisHeaders[q.Axis]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownAxis, q.Axis)
	}
	if q.GroupBy != "" {
		allowed := false
		for _, dim := range AllowedDimensions[q.Axis] {
			if dim == q.GroupBy {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %q on axis %q", errBadDimension, q.GroupBy, q.Axis)
		}
	}

	var (
		items []viewItem
		err   error
	)
	switch q.Axis {
	case AxisCommunity:
		items, err = e.fetchCommunities(ctx)
	case AxisVillage:
		items, err = e.fetchVillages(ctx)
	case AxisBeneficiary:
		items, err = e.fetchBeneficiaries(ctx)
	case AxisVaccination, AxisDisease, AxisPredation:
		items, err = e.fetchVisitLines(ctx, q.Axis, q.Year)
	case AxisWorker:
		items, err = e.fetchWorkers(ctx)
	}
	if err != nil {
		return nil, err
	}

	if q.Search != "" {
		items = searchItems(items, q.Search)
	}

	result := &ViewResult{
		Axis:    q.Axis,
		Headers: headers,
		Summary: summarize(q.Axis, items),
		Meta: ViewMeta{
			TotalRows:   len(items),
			Year:        q.Year,
			GroupBy:     q.GroupBy,
			Search:      q.Search,
			GeneratedAt: time.Now(),
		},
	}

	if q.GroupBy == "" {
		rows := make([][]string, len(items))
		for i, it := range items {
			rows[i] = it.cells
		}
		result.Rows = rows
		return result, nil
	}

	result.Groups = groupItems(items, q.GroupBy)
	return result, nil
}

// searchItems keeps items whose rendered row contains the needle anywhere,
// case-insensitively.
func searchItems(items []viewItem, needle string) []viewItem {
	needle = strings.ToLower(needle)
	matched := items[:0]
	for _, it := range items {
		for _, cell := range it.cells {
			if strings.Contains(strings.ToLower(cell), needle) {
				matched = append(matched, it)
				break
			}
		}
	}
	return matched
}

// groupItems buckets items by the dimension's group key. Groups are sorted
// by key with Unknown always last.
func groupItems(items []viewItem, dimension string) []ViewGroup {
	accessor := groupAccessors[dimension]
	buckets := map[string][][]string{}
	for _, it := range items {
		key := accessor(it)
		buckets[key] = append(buckets[key], it.cells)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == unknownGroup {
			return false
		}
		if keys[j] == unknownGroup {
			return true
		}
		return keys[i] < keys[j]
	})

	groups := make([]ViewGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, ViewGroup{Key: key, Count: len(buckets[key]), Rows: buckets[key]})
	}
	return groups
}

// summarize computes the axis-specific totals over the filtered items.
func summarize(axis string, items []viewItem) map[string]any {
	switch axis {
	case AxisCommunity:
		var totalArea float64
		for _, it := range items {
			if it.community != nil && it.community.Area != nil {
				totalArea += *it.community.Area
			}
		}
		return map[string]any{"communities": len(items), "totalArea": totalArea}
	case AxisVillage:
		totalPop := 0
		for _, it := range items {
			if it.village != nil && it.village.Population != nil {
				totalPop += *it.village.Population
			}
		}
		return map[string]any{"villages": len(items), "totalPopulation": totalPop}
	case AxisBeneficiary:
		return map[string]any{"beneficiaries": len(items)}
	case AxisVaccination:
		// Sales figures live on the visit header, so a visit with several
		// vaccination lines carries the same income on each line. Count the
		// money and the record once per visit.
		var animals, income float64
		seen := map[uint]bool{}
		for _, it := range items {
			animals += it.count
			if !seen[it.visitID] {
				seen[it.visitID] = true
				income += it.value
			}
		}
		return map[string]any{"records": len(seen), "animalsVaccinated": int(animals), "salesIncome": income}
	case AxisDisease:
		var affected float64
		for _, it := range items {
			affected += it.count
		}
		return map[string]any{"records": len(items), "animalsAffected": int(affected)}
	case AxisPredation:
		var lost, loss float64
		for _, it := range items {
			lost += it.count
			loss += it.value
		}
		return map[string]any{"records": len(items), "animalsLost": int(lost), "lossValue": loss}
	case AxisWorker:
		active := 0
		for _, it := range items {
			if it.worker != nil && it.worker.EmploymentStatus() == models.StatusActive {
				active++
			}
		}
		return map[string]any{"workers": len(items), "active": active}
	}
	return map[string]any{}
}

func (e *ViewEngine) fetchCommunities(ctx context.Context) ([]viewItem, error) {
	var communities []models.Community
	if err := e.db.WithContext(ctx).Order("name").Find(&communities).Error; err != nil {
		return nil, err
	}
	items := make([]viewItem, 0, len(communities))
	for i := range communities {
		c := &communities[i]
		items = append(items, viewItem{
			community: c,
			cells: []string{
				c.Name,
				formatOptText(c.Alias),
				formatOptText(c.Country),
				formatOptText(c.Province),
				formatOptText(c.District),
				formatFloat(c.Area),
				formatFloat(c.ForestArea),
				formatFloat(c.PastureLand),
				formatOptText(c.ProtectionStatus),
			},
		})
	}
	return items, nil
}

func (e *ViewEngine) fetchVillages(ctx context.Context) ([]viewItem, error) {
	var villages []models.Village
	if err := e.db.WithContext(ctx).Preload("Community").Order("name").Find(&villages).Error; err != nil {
		return nil, err
	}
	items := make([]viewItem, 0, len(villages))
	for i := range villages {
		v := &villages[i]
		gps := absent
		if v.GPSLat != nil && v.GPSLong != nil {
			gps = fmt.Sprintf("%.5f, %.5f", *v.GPSLat, *v.GPSLong)
		}
		items = append(items, viewItem{
			village:   v,
			community: v.Community,
			cells: []string{
				v.Name,
				v.CommunityName,
				formatCount(v.Population),
				formatFloat(v.Area),
				gps,
			},
		})
	}
	return items, nil
}

func (e *ViewEngine) fetchBeneficiaries(ctx context.Context) ([]viewItem, error) {
	var beneficiaries []models.Beneficiary
	err := e.db.WithContext(ctx).Preload("Village.Community").Order("name").Find(&beneficiaries).Error
	if err != nil {
		return nil, err
	}
	items := make([]viewItem, 0, len(beneficiaries))
	for i := range beneficiaries {
		b := &beneficiaries[i]
		village, community := absent, absent
		var villageRow *models.Village
		if b.Village != nil {
			villageRow = b.Village
			village = b.Village.Name
			community = b.Village.CommunityName
		}
		items = append(items, viewItem{
			village: villageRow,
			cells: []string{
				b.Name,
				formatOptText(b.FatherName),
				village,
				community,
			},
		})
	}
	return items, nil
}

// fetchVisitLines flattens visit records into one row per line of the
// requested kind. The year filter is pushed into the query so off-year
// visits are never loaded.
func (e *ViewEngine) fetchVisitLines(ctx context.Context, axis string, year int) ([]viewItem, error) {
	query := e.db.WithContext(ctx).
		Preload("Beneficiary.Village.Community").
		Preload("Worker").
		Order("date DESC")
	switch axis {
	case AxisVaccination:
		query = query.Preload("Vaccinations")
	case AxisDisease:
		query = query.Preload("Diseases.Symptoms")
	case AxisPredation:
		query = query.Preload("Predations")
	}
	if year > 0 {
		query = query.Where("year = ?", year)
	}

	var visits []models.FieldVisit
	if err := query.Find(&visits).Error; err != nil {
		return nil, err
	}

	var items []viewItem
	for i := range visits {
		visit := &visits[i]
		base := visitItemBase(visit)
		switch axis {
		case AxisVaccination:
			for _, line := range visit.Vaccinations {
				it := base
				income := salesIncome(visit.PerSoldAnimalCost, visit.SheepSold, visit.CattleSold, visit.GoatsSold)
				it.count = float64(intOrZero(line.Sheep) + intOrZero(line.Goats) + intOrZero(line.Cattle) +
					intOrZero(line.DozoYak) + intOrZero(line.Others))
				it.value = floatOrZero(income)
				it.cells = append(slices.Clone(base.cells),
					line.VaccinationType,
					formatAnimalSummary(line.Sheep, line.Goats, line.Cattle, line.DozoYak, line.Others),
					formatSalesSummary(visit.SheepSold, visit.CattleSold, visit.GoatsSold),
					formatCurrency(income),
					formatOptText(visit.Donor),
				)
				items = append(items, it)
			}
		case AxisDisease:
			for _, line := range visit.Diseases {
				it := base
				it.count = float64(intOrZero(line.Sheep) + intOrZero(line.Goats) + intOrZero(line.Cattle) +
					intOrZero(line.DozoYak) + intOrZero(line.Others))
				symptoms := absent
				if len(line.Symptoms) > 0 {
					names := make([]string, len(line.Symptoms))
					for j, s := range line.Symptoms {
						names[j] = s.Symptom
					}
					symptoms = strings.Join(names, ", ")
				}
				it.cells = append(slices.Clone(base.cells),
					line.DiseaseType,
					formatAnimalSummary(line.Sheep, line.Goats, line.Cattle, line.DozoYak, line.Others),
					symptoms,
				)
				items = append(items, it)
			}
		case AxisPredation:
			for _, line := range visit.Predations {
				it := base
				loss := predationLoss(line.PerPreyAnimalCost, line.Sheep, line.Goats, line.Cattle, line.DozoYak, line.Others)
				it.count = float64(intOrZero(line.Sheep) + intOrZero(line.Goats) + intOrZero(line.Cattle) +
					intOrZero(line.DozoYak) + intOrZero(line.Others))
				it.value = floatOrZero(loss)
				it.cells = append(slices.Clone(base.cells),
					line.PredatorType,
					formatAnimalSummary(line.Sheep, line.Goats, line.Cattle, line.DozoYak, line.Others),
					formatCurrency(loss),
				)
				items = append(items, it)
			}
		}
	}
	return items, nil
}

// visitItemBase renders the shared leading cells of a visit-backed row and
// resolves the linked rows grouping will walk. Callers clone the cells
// before appending their per-line columns.
func visitItemBase(visit *models.FieldVisit) viewItem {
	beneficiary, village, community := absent, absent, absent
	var villageRow *models.Village
	var worker *models.EchWorker
	if visit.Beneficiary != nil {
		beneficiary = visit.Beneficiary.Name
		if visit.Beneficiary.Village != nil {
			villageRow = visit.Beneficiary.Village
			village = villageRow.Name
			community = villageRow.CommunityName
		}
	}
	workerName := absent
	if visit.Worker != nil {
		worker = visit.Worker
		workerName = worker.Name
	}

	cells := []string{
		formatDate(visit.Date),
		strconv.Itoa(visit.Year),
		visit.Season,
		beneficiary,
		village,
		community,
		workerName,
	}
	return viewItem{
		cells:   cells,
		visitID: visit.ID,
		year:    visit.Year,
		season:  visit.Season,
		village: villageRow,
		worker:  worker,
	}
}

func (e *ViewEngine) fetchWorkers(ctx context.Context) ([]viewItem, error) {
	var workers []models.EchWorker
	if err := e.db.WithContext(ctx).Order("id").Find(&workers).Error; err != nil {
		return nil, err
	}
	items := make([]viewItem, 0, len(workers))
	for i := range workers {
		w := &workers[i]
		items = append(items, viewItem{
			worker: w,
			cells: []string{
				strconv.FormatUint(uint64(w.ID), 10),
				w.Name,
				w.Username,
				formatOptText(w.HighestEducation),
				formatOptText(w.Phone),
				formatDate(w.JoiningDate),
				w.EmploymentStatus(),
			},
		})
	}
	return items, nil
}
