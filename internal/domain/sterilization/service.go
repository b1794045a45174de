package sterilization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/platform/label"
)

// DefaultShelfLifeDays is the package shelf life applied when the service
// is constructed without an explicit override.
const DefaultShelfLifeDays = 365

// EventSink receives domain events for outbound delivery. Optional.
type EventSink interface {
	Emit(ctx context.Context, eventType, resourceType string, resourceID uuid.UUID)
}

type Service struct {
	repo          Repository
	shelfLifeDays int
	events        EventSink
}

func NewService(r Repository, shelfLifeDays int) *Service {
	if shelfLifeDays <= 0 {
		shelfLifeDays = DefaultShelfLifeDays
	}
	return &Service{repo: r, shelfLifeDays: shelfLifeDays}
}

func (s *Service) SetEventSink(es EventSink) { s.events = es }

func (s *Service) emit(ctx context.Context, eventType, resourceType string, id uuid.UUID) {
	if s.events != nil {
		s.events.Emit(ctx, eventType, resourceType, id)
	}
}

var validCycleTypes = map[string]bool{
	TypeGravity: true, TypePrevac: true, TypeFlash: true, TypeChemical: true,
}

// StartCycle opens a new RUNNING cycle and assigns the per-autoclave
// cycle number for the day.
func (s *Service) StartCycle(ctx context.Context, c *Cycle) error {
	if strings.TrimSpace(c.AutoclaveName) == "" {
		return fmt.Errorf("autoclave_name is required")
	}
	if !validCycleTypes[c.Type] {
		return fmt.Errorf("invalid cycle type: %s", c.Type)
	}
	if c.OperatorID == uuid.Nil {
		return fmt.Errorf("operator_id is required")
	}
	c.Status = CycleRunning
	c.StartedAt = time.Now().UTC()
	n, err := s.repo.NextCycleNumber(ctx, c.AutoclaveName, c.StartedAt)
	if err != nil {
		return err
	}
	c.CycleNumber = n
	return s.repo.CreateCycle(ctx, c)
}

func (s *Service) GetCycle(ctx context.Context, id uuid.UUID) (*Cycle, error) {
	return s.repo.GetCycle(ctx, id)
}

func (s *Service) SearchCycles(ctx context.Context, params map[string]string, limit, offset int) ([]*Cycle, int, error) {
	return s.repo.SearchCycles(ctx, params, limit, offset)
}

// CompleteCycle records the indicator readings for a RUNNING cycle. The
// cycle passes only when both the mechanical and chemical indicators
// pass. A passing cycle that requires a biological indicator gets a
// pending BI result queued for the incubator.
func (s *Service) CompleteCycle(ctx context.Context, id uuid.UUID, mechanicalPass, chemicalPass bool) (*Cycle, error) {
	c, err := s.repo.GetCycle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cycle not found: %w", err)
	}
	if !c.Open() {
		return nil, fmt.Errorf("cannot complete: cycle is %s, must be %s", c.Status, CycleRunning)
	}
	now := time.Now().UTC()
	c.MechanicalPass = &mechanicalPass
	c.ChemicalPass = &chemicalPass
	c.CompletedAt = &now
	if mechanicalPass && chemicalPass {
		c.Status = CyclePassed
	} else {
		c.Status = CycleFailed
	}
	if err := s.repo.UpdateCycle(ctx, c); err != nil {
		return nil, err
	}
	if c.Status == CyclePassed && c.BIRequired {
		bi := &BIResult{CycleID: c.ID, Result: BIPending}
		if err := s.repo.CreateBIResult(ctx, bi); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *Service) AbortCycle(ctx context.Context, id uuid.UUID) (*Cycle, error) {
	c, err := s.repo.GetCycle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cycle not found: %w", err)
	}
	if !c.Open() {
		return nil, fmt.Errorf("cannot abort: cycle is %s, must be %s", c.Status, CycleRunning)
	}
	now := time.Now().UTC()
	c.Status = CycleAborted
	c.CompletedAt = &now
	if err := s.repo.UpdateCycle(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// PackageSpec is one package to wrap out of a completed cycle.
type PackageSpec struct {
	ContentsLabel   string `json:"contents_label"`
	InstrumentCount int    `json:"instrument_count"`
}

// CreatePackages wraps a batch of packages from a PASSED cycle. Packages
// from a cycle still awaiting its biological indicator start in
// QUARANTINE; otherwise they are immediately STERILE. Expiry is fixed at
// creation from the configured shelf life.
func (s *Service) CreatePackages(ctx context.Context, cycleID uuid.UUID, specs []PackageSpec) ([]*Package, error) {
	c, err := s.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("cycle not found: %w", err)
	}
	if c.Status != CyclePassed {
		return nil, fmt.Errorf("packages require a %s cycle, cycle is %s", CyclePassed, c.Status)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one package is required")
	}

	status := PkgSterile
	if c.BIRequired && !s.biPassed(ctx, c.ID) {
		status = PkgQuarantine
	}
	expires := time.Now().UTC().AddDate(0, 0, s.shelfLifeDays)

	out := make([]*Package, 0, len(specs))
	for i, spec := range specs {
		if strings.TrimSpace(spec.ContentsLabel) == "" {
			return nil, fmt.Errorf("package %d: contents_label is required", i)
		}
		if spec.InstrumentCount <= 0 {
			return nil, fmt.Errorf("package %d: instrument_count must be positive", i)
		}
		p := &Package{
			CycleID:         c.ID,
			ContentsLabel:   spec.ContentsLabel,
			InstrumentCount: spec.InstrumentCount,
			Status:          status,
			ExpiresAt:       expires,
		}
		if err := s.repo.CreatePackage(ctx, p); err != nil {
			return nil, err
		}
		if status == PkgQuarantine {
			s.emit(ctx, "sterilization.package_quarantined", "sterilization_package", p.ID)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) biPassed(ctx context.Context, cycleID uuid.UUID) bool {
	results, err := s.repo.ListBIResultsByCycle(ctx, cycleID)
	if err != nil {
		return false
	}
	for _, b := range results {
		if b.Result == BIPass {
			return true
		}
	}
	return false
}

func (s *Service) GetPackage(ctx context.Context, id uuid.UUID) (*Package, error) {
	return s.repo.GetPackage(ctx, id)
}

func (s *Service) ListPackagesByCycle(ctx context.Context, cycleID uuid.UUID) ([]*Package, error) {
	return s.repo.ListPackagesByCycle(ctx, cycleID)
}

// RecordBIResult reads out the pending biological indicator for a cycle.
// A pass releases the cycle's quarantined packages to STERILE. A fail
// marks the cycle FAILED and recalls every package not yet dispensed.
func (s *Service) RecordBIResult(ctx context.Context, cycleID uuid.UUID, result, incubatorSlot string, technicianID uuid.UUID) (*BIResult, error) {
	if result != BIPass && result != BIFail {
		return nil, fmt.Errorf("invalid BI result: %s", result)
	}
	c, err := s.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("cycle not found: %w", err)
	}

	results, err := s.repo.ListBIResultsByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	var bi *BIResult
	for _, b := range results {
		if b.Result == BIPending {
			bi = b
			break
		}
	}
	if bi == nil {
		return nil, fmt.Errorf("no pending biological indicator for cycle")
	}

	now := time.Now().UTC()
	bi.Result = result
	bi.ReadAt = &now
	if incubatorSlot != "" {
		bi.IncubatorSlot = incubatorSlot
	}
	if technicianID != uuid.Nil {
		bi.TechnicianID = &technicianID
	}
	if err := s.repo.UpdateBIResult(ctx, bi); err != nil {
		return nil, err
	}

	switch result {
	case BIPass:
		if err := s.releaseQuarantine(ctx, cycleID); err != nil {
			return nil, err
		}
	case BIFail:
		c.Status = CycleFailed
		if err := s.repo.UpdateCycle(ctx, c); err != nil {
			return nil, err
		}
		if err := s.recallCycle(ctx, cycleID); err != nil {
			return nil, err
		}
		s.emit(ctx, "sterilization.bi_failed", "sterilization_cycle", cycleID)
	}
	return bi, nil
}

func (s *Service) ListBIResults(ctx context.Context, cycleID uuid.UUID) ([]*BIResult, error) {
	return s.repo.ListBIResultsByCycle(ctx, cycleID)
}

// ReleaseQuarantine moves a cycle's quarantined packages to STERILE. It
// requires a passing biological indicator on record.
func (s *Service) ReleaseQuarantine(ctx context.Context, cycleID uuid.UUID) error {
	if _, err := s.repo.GetCycle(ctx, cycleID); err != nil {
		return fmt.Errorf("cycle not found: %w", err)
	}
	if !s.biPassed(ctx, cycleID) {
		return fmt.Errorf("cannot release quarantine without a passing biological indicator")
	}
	return s.releaseQuarantine(ctx, cycleID)
}

func (s *Service) releaseQuarantine(ctx context.Context, cycleID uuid.UUID) error {
	pkgs, err := s.repo.ListPackagesByCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		if p.Status != PkgQuarantine {
			continue
		}
		p.Status = PkgSterile
		if err := s.repo.UpdatePackage(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) recallCycle(ctx context.Context, cycleID uuid.UUID) error {
	pkgs, err := s.repo.ListPackagesByCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		if p.Status == PkgDispensed || p.Status == PkgRecalled {
			continue
		}
		p.Status = PkgRecalled
		if err := s.repo.UpdatePackage(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Dispense hands a STERILE, unexpired package out for a patient visit.
// An expired package is flagged EXPIRED instead of dispensed.
func (s *Service) Dispense(ctx context.Context, packageID, patientID uuid.UUID) (*Package, error) {
	p, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}
	if p.Status != PkgSterile {
		return nil, fmt.Errorf("cannot dispense: package is %s, must be %s", p.Status, PkgSterile)
	}
	now := time.Now().UTC()
	if now.After(p.ExpiresAt) {
		p.Status = PkgExpired
		if err := s.repo.UpdatePackage(ctx, p); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("package expired on %s", p.ExpiresAt.Format("2006-01-02"))
	}
	p.Status = PkgDispensed
	p.DispensedTo = &patientID
	p.DispensedAt = &now
	if err := s.repo.UpdatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Recall pulls a single package out of circulation.
func (s *Service) Recall(ctx context.Context, packageID uuid.UUID) (*Package, error) {
	p, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}
	if p.Status == PkgRecalled {
		return nil, fmt.Errorf("package already recalled")
	}
	p.Status = PkgRecalled
	if err := s.repo.UpdatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Label is the printable label description for a package: physical
// geometry, positioned text fields and the QR payload.
type Label struct {
	WidthMM  float64      `json:"width_mm"`
	HeightMM float64      `json:"height_mm"`
	MarginMM float64      `json:"margin_mm"`
	Fields   []LabelField `json:"fields"`
	QRData   string       `json:"qr_data"`
}

type LabelField struct {
	Name  string  `json:"name"`
	Value string  `json:"value"`
	XMM   float64 `json:"x_mm"`
	YMM   float64 `json:"y_mm"`
}

// IssueLabel builds the label for a package. Only packages from
// non-failed cycles can be labelled.
func (s *Service) IssueLabel(ctx context.Context, packageID uuid.UUID) (*Label, error) {
	p, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}
	if p.Status == PkgRecalled || p.Status == PkgExpired {
		return nil, fmt.Errorf("cannot issue label for %s package", p.Status)
	}
	c, err := s.repo.GetCycle(ctx, p.CycleID)
	if err != nil {
		return nil, fmt.Errorf("cycle not found: %w", err)
	}

	textX := float64(label.HeightMM + 2*label.MarginMM)
	return &Label{
		WidthMM:  label.WidthMM,
		HeightMM: label.HeightMM,
		MarginMM: label.MarginMM,
		Fields: []LabelField{
			{Name: "contents", Value: p.ContentsLabel, XMM: textX, YMM: label.MarginMM + 2},
			{Name: "cycle", Value: fmt.Sprintf("%s #%d", c.AutoclaveName, c.CycleNumber), XMM: textX, YMM: label.MarginMM + 8},
			{Name: "sterilized", Value: c.StartedAt.Format("2006-01-02"), XMM: textX, YMM: label.MarginMM + 14},
			{Name: "expires", Value: p.ExpiresAt.Format("2006-01-02"), XMM: textX, YMM: label.MarginMM + 20},
		},
		QRData: label.Encode(c.ID, p.ID, p.ExpiresAt),
	}, nil
}

// LabelPNG renders the QR code for a package label at the given DPI.
func (s *Service) LabelPNG(ctx context.Context, packageID uuid.UUID, dpi int) ([]byte, error) {
	p, err := s.repo.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("package not found: %w", err)
	}
	if p.Status == PkgRecalled || p.Status == PkgExpired {
		return nil, fmt.Errorf("cannot issue label for %s package", p.Status)
	}
	return label.RenderPNG(p.CycleID, p.ID, p.ExpiresAt, dpi)
}

// ComplianceSummary aggregates the given day's cycles, pending
// biological indicators and quarantined package count.
func (s *Service) ComplianceSummary(ctx context.Context, day time.Time) (*ComplianceSummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	cycles, _, err := s.repo.SearchCycles(ctx, map[string]string{
		"from": from.Format(time.RFC3339),
		"to":   to.Format(time.RFC3339),
	}, 1000, 0)
	if err != nil {
		return nil, err
	}

	sum := &ComplianceSummary{Date: from.Format("2006-01-02")}
	for _, c := range cycles {
		sum.CyclesRun++
		switch c.Status {
		case CyclePassed:
			sum.CyclesPassed++
		case CycleFailed:
			sum.CyclesFailed++
		}
	}
	if done := sum.CyclesPassed + sum.CyclesFailed; done > 0 {
		sum.PassRate = float64(sum.CyclesPassed) / float64(done) * 100
	}

	if sum.PendingBIs, err = s.repo.CountPendingBIs(ctx); err != nil {
		return nil, err
	}
	if sum.QuarantinedPackages, err = s.repo.CountPackagesByStatus(ctx, PkgQuarantine); err != nil {
		return nil, err
	}
	return sum, nil
}
