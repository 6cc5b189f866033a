package router

import "github.com/gin-gonic/gin"

// Module is one feature area of the API (auth, exams, questions...) that
// mounts its own routes, middleware included, under the shared group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and group-level middleware and mounts them
// all under /api in one pass.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use queues middleware that will apply to every module.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll applies the queued middleware and then mounts every module
// in the order it was added.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
