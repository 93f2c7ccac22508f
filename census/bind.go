package census

import (
	"math"
	"strconv"

	"github.com/lcap17/proyect-viernes/engine"
)

// Column names of the census table, in display order.
const (
	ColFullName     = "nombre_completo"
	ColMunicipality = "municipio"
	ColAge          = "edad"
	ColOccupation   = "ocupacion"
	ColHousing      = "tipo_vivienda"
	ColSector       = "sector"
	ColRegion       = "region"
	ColIncome       = "ingreso_mensual"
	ColInternet     = "acceso_internet"
	ColBirthDate    = "fecha_nacimiento"
)

// adapter declares the census columns once; Bind reuses it for every render.
var adapter = engine.NewDomainAdapter[Person]().
	Dimension(ColFullName, func(p Person) string { return p.FullName }).
	Dimension(ColMunicipality, func(p Person) string { return p.Municipality }).
	Measure(ColAge, func(p Person) float64 { return float64(p.Age) }).
	Dimension(ColOccupation, func(p Person) string { return p.Occupation }).
	Dimension(ColHousing, func(p Person) string { return p.Housing }).
	Dimension(ColSector, func(p Person) string { return p.Sector }).
	Dimension(ColRegion, func(p Person) string { return p.Region }).
	Measure(ColIncome, func(p Person) float64 {
		if p.Income == nil {
			return math.NaN()
		}
		return float64(*p.Income)
	}).
	Dimension(ColInternet, func(p Person) string { return strconv.FormatBool(p.Internet) }).
	Dimension(ColBirthDate, func(p Person) string { return p.BirthDate.Format(DateLayout) })

// Bind exposes ds as an engine.RecordView. Absent incomes read as NaN.
func Bind(ds Dataset) engine.RecordView {
	return adapter.Bind(ds)
}

// RecordView exposes the filtered people without copying them.
func (v View) RecordView() engine.RecordView {
	return engine.Subset(Bind(v.dataset), v.Indices)
}
