package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/loda/batches"
	"github.com/reusee/loda/lodaconfigs"
	"github.com/reusee/loda/lodavm"
	"github.com/reusee/loda/logs"
	"github.com/reusee/loda/scripts"
	"github.com/reusee/loda/storages"
)

type Module struct {
	dscope.Module
	Logs     logs.Module
	Configs  lodaconfigs.Module
	Storages storages.Module
	VM       lodavm.Module
	Batches  batches.Module
	Scripts  scripts.Module
}
