package catalog

// DefaultProducts is the built-in farm catalog used by the mock store and
// exported to the remote store by cmd/seed.
func DefaultProducts() []Product {
	return []Product{
		{ID: "1", Title: "Cerca de madera", Price: 120, Image: "/img/cerca-madera.png", Category: CategoryDecoracion},
		{ID: "2", Title: "Espantapájaros", Price: 350, Image: "/img/espantapajaros.png", Category: CategoryDecoracion},
		{ID: "3", Title: "Granero rojo clásico", Price: 2500, Image: "/img/granero-rojo.png", Category: CategoryGranero},
		{ID: "4", Title: "Silo de grano", Price: 1800, Image: "/img/silo-grano.png", Category: CategorySilo},
		{ID: "5", Title: "Fuente de piedra", Price: 900, Image: "/img/fuente-piedra.png", Category: CategoryDecoracion},
		{ID: "6", Title: "Granero de troncos", Price: 3200, Image: "/img/granero-troncos.png", Category: CategoryGranero},
		{ID: "7", Title: "Silo metálico grande", Price: 4100, Image: "/img/silo-metalico.png", Category: CategorySilo},
		{ID: "8", Title: "Molino de viento", Price: 2750, Image: "/img/molino.png", Category: CategoryOtros},
		{ID: "9", Title: "Bebedero para animales", Price: 260, Image: "/img/bebedero.png", Category: CategoryOtros},
		{ID: "10", Title: "Farol de jardín", Price: 180, Image: "/img/farol.png", Category: CategoryDecoracion},
		{ID: "11", Title: "Granero mini", Price: 1400, Image: "/img/granero-mini.png", Category: CategoryGranero},
		{ID: "12", Title: "Colmena de abejas", Price: 640, Image: "/img/colmena.png", Category: CategoryOtros},
	}
}
